// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package hlr

import (
	"github.com/apex/log"

	"github.com/tfctl/stepctl/internal/step"
)

// Node is one part occurrence in a built tree.
type Node struct {
	LocalID       int `json:"id" yaml:"id"`
	ParentLocalID int `json:"parent_id" yaml:"parent_id"`
	Depth         int `json:"depth" yaml:"depth"`

	// Key is the occurrence's own equality key and Occurrence its rank among
	// siblings sharing that key.
	Key             string `json:"key" yaml:"key"`
	Occurrence      int    `json:"occurrence" yaml:"occurrence"`
	Signature       string `json:"signature" yaml:"signature"`
	ParentSignature string `json:"parent_signature" yaml:"parent_signature"`

	Part     step.Part      `json:"part" yaml:"part"`
	Relation *step.Relation `json:"relation,omitempty" yaml:"relation,omitempty"`

	InstanceName string `json:"instance" yaml:"instance"`
	InstancePath string `json:"path" yaml:"path"`

	// MappingResolved is owned by downstream mapping and never set here.
	MappingResolved bool `json:"mapping_resolved" yaml:"mapping_resolved"`
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentLocalID == 0
}

// Tree is the pre-order flattened output of Build.
type Tree struct {
	Nodes     []Node    `json:"nodes" yaml:"nodes"`
	Anomalies []Anomaly `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
}

// Len returns the number of nodes.
func (t Tree) Len() int {
	return len(t.Nodes)
}

// Option customizes Build.
type Option func(*builder)

// WithKeyFunc sets the equality key used for signatures. Nil is ignored.
func WithKeyFunc(fn KeyFunc) Option {
	return func(b *builder) {
		if fn != nil {
			b.keyFn = fn
		}
	}
}

// WithRootName prefixes every instance path with name.
func WithRootName(name string) Option {
	return func(b *builder) { b.rootName = name }
}

type builder struct {
	keyFn    KeyFunc
	rootName string

	parts     []step.Part
	relations []step.Relation
	index     map[int]int   // part id -> position in parts
	children  map[int][]int // parent part id -> positions in relations
	visited   map[int]bool
	onPath    map[int]bool

	tree Tree
}

// Build turns flat part and relation records into a pre-order tree. Records
// are used in the order supplied. Parts without a resolvable incoming
// relation become roots; a part used by several relations yields one node per
// use. Dangling references, duplicate ids and cycles are recorded as
// anomalies and never stop the build.
func Build(parts []step.Part, relations []step.Relation, opts ...Option) Tree {
	b := &builder{
		keyFn:     NameRepKey,
		relations: relations,
		index:     make(map[int]int, len(parts)),
		children:  make(map[int][]int),
		visited:   make(map[int]bool, len(parts)),
		onPath:    make(map[int]bool),
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, p := range parts {
		if _, dup := b.index[p.ID]; dup {
			b.anomaly(newPartAnomaly(DuplicatePart, p))
			continue
		}
		b.index[p.ID] = len(b.parts)
		b.parts = append(b.parts, p)
	}

	incoming := make(map[int]bool)
	for i, r := range relations {
		if _, ok := b.index[r.ParentID]; !ok {
			b.anomaly(newRelationAnomaly(DanglingParent, r.ParentID, r))
			continue
		}
		if _, ok := b.index[r.ChildID]; !ok {
			b.anomaly(newRelationAnomaly(DanglingChild, r.ChildID, r))
			continue
		}
		b.children[r.ParentID] = append(b.children[r.ParentID], i)
		incoming[r.ChildID] = true
	}

	// Roots share one sibling scope.
	rootScope := make(map[string]int)
	for _, p := range b.parts {
		if !incoming[p.ID] {
			b.walk(p, nil, nil, rootScope)
		}
	}

	for _, p := range b.parts {
		if !b.visited[p.ID] {
			b.anomaly(newPartAnomaly(Unreachable, p))
			b.walk(p, nil, nil, rootScope)
		}
	}

	log.Debugf("hlr built: parts=%d relations=%d nodes=%d anomalies=%d",
		len(b.parts), len(relations), len(b.tree.Nodes), len(b.tree.Anomalies))

	return b.tree
}

// walk emits p as a child of parent (nil for a root) and descends into its
// children. scope counts keys already used by p's siblings.
func (b *builder) walk(p step.Part, rel *step.Relation, parent *Node, scope map[string]int) {
	key := b.keyFn(p, rel)
	scope[key]++

	n := Node{
		LocalID:    len(b.tree.Nodes) + 1,
		Key:        key,
		Occurrence: scope[key],
		Part:       p,
		Relation:   rel,
	}

	n.InstanceName = p.Name
	if rel != nil && rel.Label != "" {
		n.InstanceName = p.Name + "(" + rel.Label + ")"
	}

	parentPath := b.rootName
	if parent != nil {
		n.ParentLocalID = parent.LocalID
		n.Depth = parent.Depth + 1
		n.ParentSignature = parent.Signature
		parentPath = parent.InstancePath
	}
	n.Signature = Signature(n.ParentSignature, key, n.Occurrence)

	n.InstancePath = n.InstanceName
	if parentPath != "" {
		n.InstancePath = parentPath + "." + n.InstanceName
	}

	b.tree.Nodes = append(b.tree.Nodes, n)
	b.visited[p.ID] = true
	b.onPath[p.ID] = true
	defer delete(b.onPath, p.ID)

	childScope := make(map[string]int)
	for _, ri := range b.children[p.ID] {
		r := b.relations[ri]
		if b.onPath[r.ChildID] {
			b.anomaly(newRelationAnomaly(Cycle, r.ChildID, r))
			continue
		}
		child := b.parts[b.index[r.ChildID]]
		b.walk(child, &r, &n, childScope)
	}
}

func (b *builder) anomaly(a Anomaly) {
	log.Warnf("hlr anomaly: %s", a)
	b.tree.Anomalies = append(b.tree.Anomalies, a)
}
