// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"

	"github.com/apex/log"

	"github.com/tfctl/stepctl/internal/hlr"
)

// Node is one entry of the merged sequence. LocalID, ParentLocalID and Depth
// describe the merged tree; FirstLocalID and SecondLocalID point back into the
// source trees (0 when absent) and are payload only.
type Node struct {
	hlr.Node
	Class         Classification `json:"-"`
	FirstLocalID  int            `json:"first_id"`
	SecondLocalID int            `json:"second_id"`
}

// Kind is shorthand for n.Class.Kind().
func (n Node) Kind() Kind {
	if n.Class == nil {
		return 0
	}
	return n.Class.Kind()
}

// Original returns the first-tree counterpart of a relocated node, or nil.
func (n Node) Original() *Ref {
	if r, ok := n.Class.(SecondRelocated); ok {
		ref := r.Original
		return &ref
	}
	return nil
}

// MarshalJSON flattens the classification into "class" and "original".
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	return json.Marshal(struct {
		plain
		Class    Kind `json:"class"`
		Original *Ref `json:"original,omitempty"`
	}{plain(n), n.Kind(), n.Original()})
}

// Option customizes Compare.
type Option func(*comparator)

// WithRelocation enables or disables relocation detection. It is enabled by
// default. When disabled, a moved node shows up as a FirstOnly/SecondOnly
// pair.
func WithRelocation(enabled bool) Option {
	return func(c *comparator) { c.relocate = enabled }
}

type comparator struct {
	relocate bool
}

// merged is a node of the merged tree under construction.
type merged struct {
	node     hlr.Node
	class    Classification
	firstID  int
	secondID int
	children []*merged
}

// Compare aligns two pre-order trees by signature and returns the merged,
// classified sequence in pre-order with fresh local ids starting at 1.
//
// A second-tree node whose signature is still pending in the first tree is
// Both. Otherwise, with relocation enabled, it is matched by its own key
// against a pending first-tree node whose signature does not occur in the
// second tree at all; the earliest such node in first-tree order wins and the
// match is SecondRelocated. Anything else in the second tree is SecondOnly,
// and first-tree nodes left pending are FirstOnly.
//
// Under each merged parent, children that came from the first tree keep
// first-tree order and precede children that exist only in the second tree,
// which keep second-tree order.
func Compare(first, second []hlr.Node, opts ...Option) []Node {
	c := &comparator{relocate: true}
	for _, opt := range opts {
		opt(c)
	}

	log.Debugf("compare: first=%d second=%d relocate=%v", len(first), len(second), c.relocate)

	pending := make(map[string]int, len(first))
	byKey := make(map[string][]int)
	for i, a := range first {
		pending[a.Signature] = i
		byKey[a.Key] = append(byKey[a.Key], i)
	}

	inSecond := make(map[string]bool, len(second))
	for _, b := range second {
		inSecond[b.Signature] = true
	}

	// claimedBy[i] is the second-tree index matched to first[i], or -1.
	claimedBy := make([]int, len(first))
	for i := range claimedBy {
		claimedBy[i] = -1
	}
	// matchOf[j] is the first-tree index matched to second[j], or -1.
	matchOf := make([]int, len(second))
	classOf := make([]Kind, len(second))

	claim := func(i, j int, k Kind) {
		claimedBy[i] = j
		matchOf[j] = i
		classOf[j] = k
		delete(pending, first[i].Signature)
	}

	for j, b := range second {
		matchOf[j] = -1

		if i, ok := pending[b.Signature]; ok {
			if first[i].ParentSignature == b.ParentSignature {
				claim(i, j, KindBoth)
			} else {
				claim(i, j, KindSecondRelocated)
			}
			continue
		}

		if c.relocate {
			if i := relocationCandidate(first, byKey[b.Key], claimedBy, inSecond); i >= 0 {
				log.Debugf("compare: relocated %q -> %q", first[i].Signature, b.Signature)
				claim(i, j, KindSecondRelocated)
				continue
			}
		}

		classOf[j] = KindSecondOnly
	}

	roots := mergeTrees(first, second, claimedBy, matchOf, classOf)
	result := flatten(roots)

	log.Debugf("compare: merged=%d", len(result))
	return result
}

// relocationCandidate returns the first unclaimed index among candidates
// whose signature is absent from the second tree, or -1.
func relocationCandidate(first []hlr.Node, candidates []int, claimedBy []int, inSecond map[string]bool) int {
	for _, i := range candidates {
		if claimedBy[i] >= 0 || inSecond[first[i].Signature] {
			continue
		}
		return i
	}
	return -1
}

// mergeTrees links every classified node to its merged parent and returns the
// merged roots. First-tree nodes (Both, FirstOnly) hang under the merged
// counterpart of their first-tree parent, second-tree nodes (SecondOnly,
// SecondRelocated) under the merged counterpart of their second-tree parent.
func mergeTrees(first, second []hlr.Node, claimedBy, matchOf []int, classOf []Kind) []*merged {
	ofFirst := make([]*merged, len(first))
	ofSecond := make([]*merged, len(second))
	var fromFirst, fromSecond []int

	for i, a := range first {
		j := claimedBy[i]
		switch {
		case j < 0:
			ofFirst[i] = &merged{node: a, class: FirstOnly{}, firstID: a.LocalID}
			fromFirst = append(fromFirst, i)
		case classOf[j] == KindBoth:
			m := &merged{node: a, class: Both{}, firstID: a.LocalID, secondID: second[j].LocalID}
			ofFirst[i], ofSecond[j] = m, m
			fromFirst = append(fromFirst, i)
		}
	}

	for j, b := range second {
		if ofSecond[j] != nil {
			continue
		}
		m := &merged{node: b, class: SecondOnly{}, secondID: b.LocalID}
		if i := matchOf[j]; i >= 0 {
			a := first[i]
			m.class = SecondRelocated{Original: Ref{
				LocalID:         a.LocalID,
				Signature:       a.Signature,
				ParentSignature: a.ParentSignature,
			}}
			m.firstID = a.LocalID
			ofFirst[i] = m
		}
		ofSecond[j] = m
		fromSecond = append(fromSecond, j)
	}

	firstIndex := indexByLocalID(first)
	secondIndex := indexByLocalID(second)

	var roots []*merged
	attach := func(m *merged, parent *merged) {
		if parent == nil {
			roots = append(roots, m)
			return
		}
		parent.children = append(parent.children, m)
	}

	for _, i := range fromFirst {
		var parent *merged
		if p, ok := firstIndex[first[i].ParentLocalID]; ok {
			parent = ofFirst[p]
		}
		attach(ofFirst[i], parent)
	}
	for _, j := range fromSecond {
		var parent *merged
		if p, ok := secondIndex[second[j].ParentLocalID]; ok {
			parent = ofSecond[p]
		}
		attach(ofSecond[j], parent)
	}

	return roots
}

// flatten renders the merged forest in pre-order with fresh ids.
func flatten(roots []*merged) []Node {
	var out []Node

	var visit func(m *merged, parentID, depth int)
	visit = func(m *merged, parentID, depth int) {
		n := m.node
		n.LocalID = len(out) + 1
		n.ParentLocalID = parentID
		n.Depth = depth
		out = append(out, Node{
			Node:          n,
			Class:         m.class,
			FirstLocalID:  m.firstID,
			SecondLocalID: m.secondID,
		})
		for _, child := range m.children {
			visit(child, n.LocalID, depth+1)
		}
	}

	for _, r := range roots {
		visit(r, 0, 0)
	}
	return out
}

// indexByLocalID maps local ids to slice positions. Id 0 is never mapped.
func indexByLocalID(nodes []hlr.Node) map[int]int {
	idx := make(map[int]int, len(nodes))
	for i, n := range nodes {
		if n.LocalID != 0 {
			idx[n.LocalID] = i
		}
	}
	return idx
}
