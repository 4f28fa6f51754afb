// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package hlr

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/tfctl/stepctl/internal/step"
)

// randomFile turns generated names and edge endpoints into parts and
// relations. Endpoints may fall outside the part range, so dangling
// references, reuse and cycles all show up.
func randomFile(names []string, ends []int) ([]step.Part, []step.Relation) {
	parts := make([]step.Part, len(names))
	for i, n := range names {
		parts[i] = step.Part{ID: i + 1, Type: "PD", Name: n, RepresentationType: "SR"}
	}

	var relations []step.Relation
	for i := 0; i+1 < len(ends); i += 2 {
		relations = append(relations, step.Relation{
			Label:    "r",
			ParentID: ends[i],
			ChildID:  ends[i+1],
			RawID:    i,
			Type:     "NAUO",
		})
	}
	return parts, relations
}

func TestBuildInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	names := gen.SliceOfN(8, gen.OneConstOf("Spider", "Bolt", "Nut", "Wheel"))
	ends := gen.SliceOfN(10, gen.IntRange(1, 10))

	properties.Property("local ids are 1..N and parents come first", prop.ForAll(
		func(names []string, ends []int) bool {
			tree := Build(randomFile(names, ends))
			for i, n := range tree.Nodes {
				if n.LocalID != i+1 {
					return false
				}
				if n.ParentLocalID < 0 || n.ParentLocalID >= n.LocalID {
					return false
				}
			}
			return true
		},
		names, ends,
	))

	properties.Property("signatures are unique within a tree", prop.ForAll(
		func(names []string, ends []int) bool {
			tree := Build(randomFile(names, ends))
			seen := make(map[string]bool, len(tree.Nodes))
			for _, n := range tree.Nodes {
				if seen[n.Signature] {
					return false
				}
				seen[n.Signature] = true
			}
			return true
		},
		names, ends,
	))

	properties.Property("every part is represented", prop.ForAll(
		func(names []string, ends []int) bool {
			parts, relations := randomFile(names, ends)
			tree := Build(parts, relations)
			found := make(map[int]bool)
			for _, n := range tree.Nodes {
				found[n.Part.ID] = true
			}
			return len(found) == len(parts)
		},
		names, ends,
	))

	properties.Property("child signature extends parent signature", prop.ForAll(
		func(names []string, ends []int) bool {
			tree := Build(randomFile(names, ends))
			for _, n := range tree.Nodes {
				if n.IsRoot() {
					if n.ParentSignature != "" || n.Depth != 0 {
						return false
					}
					continue
				}
				parent := tree.Nodes[n.ParentLocalID-1]
				if n.ParentSignature != parent.Signature || n.Depth != parent.Depth+1 {
					return false
				}
			}
			return true
		},
		names, ends,
	))

	properties.TestingRun(t)
}
