// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package hlr

import (
	"fmt"

	"github.com/tfctl/stepctl/internal/step"
)

// AnomalyKind classifies a structural problem found while building a tree.
type AnomalyKind int

const (
	// DanglingParent is a relation whose parent id resolves to no part. The
	// relation is dropped.
	DanglingParent AnomalyKind = iota + 1
	// DanglingChild is a relation whose child id resolves to no part. The
	// relation is dropped.
	DanglingChild
	// DuplicatePart is a part id seen more than once. The first record wins.
	DuplicatePart
	// Cycle is a relation that would revisit a part already on the current
	// descent path. Descent stops at the repeat.
	Cycle
	// Unreachable is a part that is used by some relation but was never
	// reached from a root, which only happens inside a closed cycle. It is
	// promoted to a root.
	Unreachable
)

var anomalyKindNames = map[AnomalyKind]string{
	DanglingParent: "dangling-parent",
	DanglingChild:  "dangling-child",
	DuplicatePart:  "duplicate-part",
	Cycle:          "cycle",
	Unreachable:    "unreachable",
}

func (k AnomalyKind) String() string {
	if s, ok := anomalyKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("anomaly(%d)", int(k))
}

// MarshalText renders the kind by name in json and yaml output.
func (k AnomalyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Anomaly is a non-fatal structural problem. Anomalies are values; building
// never fails because of them.
type Anomaly struct {
	Kind     AnomalyKind    `json:"kind" yaml:"kind"`
	PartID   int            `json:"part_id" yaml:"part_id"`
	Relation *step.Relation `json:"relation,omitempty" yaml:"relation,omitempty"`
	Message  string         `json:"message" yaml:"message"`
}

func (a Anomaly) String() string {
	return a.Kind.String() + ": " + a.Message
}

func newRelationAnomaly(kind AnomalyKind, partID int, r step.Relation) Anomaly {
	var msg string
	switch kind {
	case DanglingParent:
		msg = fmt.Sprintf("relation %q (#%d) uses unknown parent part %d", r.Label, r.RawID, partID)
	case DanglingChild:
		msg = fmt.Sprintf("relation %q (#%d) uses unknown child part %d", r.Label, r.RawID, partID)
	case Cycle:
		msg = fmt.Sprintf("relation %q (#%d) revisits part %d on the current path", r.Label, r.RawID, partID)
	default:
		msg = fmt.Sprintf("relation %q (#%d)", r.Label, r.RawID)
	}
	return Anomaly{Kind: kind, PartID: partID, Relation: &r, Message: msg}
}

func newPartAnomaly(kind AnomalyKind, p step.Part) Anomaly {
	var msg string
	switch kind {
	case DuplicatePart:
		msg = fmt.Sprintf("part %s duplicates an earlier id, ignored", p.Label())
	case Unreachable:
		msg = fmt.Sprintf("part %s is only reachable through a cycle, promoted to root", p.Label())
	default:
		msg = p.Label()
	}
	return Anomaly{Kind: kind, PartID: p.ID, Message: msg}
}
