// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"
)

// Kind names the four classifications of a merged node.
type Kind int

const (
	KindBoth Kind = iota + 1
	KindFirstOnly
	KindSecondOnly
	KindSecondRelocated
)

var kindNames = map[Kind]string{
	KindBoth:            "both",
	KindFirstOnly:       "first",
	KindSecondOnly:      "second",
	KindSecondRelocated: "relocated",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind accepts the names produced by String plus a few long forms
// ("first_only", "second-only", "second_relocated").
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "both":
		return KindBoth, nil
	case "first", "firstonly":
		return KindFirstOnly, nil
	case "second", "secondonly":
		return KindSecondOnly, nil
	case "relocated", "secondrelocated":
		return KindSecondRelocated, nil
	}
	return 0, fmt.Errorf("unknown classification %q", s)
}

// Classification is the tagged union attached to every merged node. Only
// SecondRelocated carries data.
type Classification interface {
	Kind() Kind
	isClassification()
}

// Both marks a node found at the same structural position in both trees.
type Both struct{}

// FirstOnly marks a node present only in the first tree.
type FirstOnly struct{}

// SecondOnly marks a node present only in the second tree.
type SecondOnly struct{}

// SecondRelocated marks a second-tree node whose first-tree counterpart sits
// at a different position. Original identifies that counterpart.
type SecondRelocated struct {
	Original Ref
}

// Ref identifies a node of the first tree.
type Ref struct {
	LocalID         int    `json:"id" yaml:"id"`
	Signature       string `json:"signature" yaml:"signature"`
	ParentSignature string `json:"parent_signature" yaml:"parent_signature"`
}

func (Both) Kind() Kind            { return KindBoth }
func (FirstOnly) Kind() Kind       { return KindFirstOnly }
func (SecondOnly) Kind() Kind      { return KindSecondOnly }
func (SecondRelocated) Kind() Kind { return KindSecondRelocated }

func (Both) isClassification()            {}
func (FirstOnly) isClassification()       {}
func (SecondOnly) isClassification()      {}
func (SecondRelocated) isClassification() {}
