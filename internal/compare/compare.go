// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"github.com/google/uuid"

	"github.com/tfctl/stepctl/internal/differ"
	"github.com/tfctl/stepctl/internal/hlr"
	"github.com/tfctl/stepctl/internal/log"
	"github.com/tfctl/stepctl/internal/step"
)

// Result is the outcome of one Process call. It is never modified after it
// is returned.
type Result struct {
	ID              uuid.UUID      `json:"id" yaml:"id"`
	Nodes           []differ.Node  `json:"nodes" yaml:"nodes"`
	FirstHeader     *step.Header   `json:"first_header,omitempty" yaml:"first_header,omitempty"`
	SecondHeader    *step.Header   `json:"second_header,omitempty" yaml:"second_header,omitempty"`
	FirstAnomalies  []hlr.Anomaly  `json:"first_anomalies,omitempty" yaml:"first_anomalies,omitempty"`
	SecondAnomalies []hlr.Anomaly  `json:"second_anomalies,omitempty" yaml:"second_anomalies,omitempty"`
	Summary         differ.Summary `json:"summary" yaml:"summary"`
}

// Option customizes a Comparison.
type Option func(*Comparison)

// WithKeyFunc sets the equality key used to build both trees.
func WithKeyFunc(fn hlr.KeyFunc) Option {
	return func(c *Comparison) { c.buildOpts = append(c.buildOpts, hlr.WithKeyFunc(fn)) }
}

// WithRootName sets the root assembly name used in instance paths.
func WithRootName(name string) Option {
	return func(c *Comparison) { c.buildOpts = append(c.buildOpts, hlr.WithRootName(name)) }
}

// WithRelocation enables or disables relocation detection.
func WithRelocation(enabled bool) Option {
	return func(c *Comparison) { c.diffOpts = append(c.diffOpts, differ.WithRelocation(enabled)) }
}

// Comparison holds the two inputs and the latest result. It does no locking;
// callers serialize SetData and Process.
type Comparison struct {
	first, second *step.File

	buildOpts []hlr.Option
	diffOpts  []differ.Option

	result Result
}

// New returns a Comparison with no data and an empty result.
func New(opts ...Option) *Comparison {
	c := &Comparison{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetData stores the two inputs. Nothing is built until Process.
func (c *Comparison) SetData(first, second *step.File) {
	c.first, c.second = first, second
}

// Process builds both trees, compares them and replaces the previous result.
// Two empty inputs produce an empty result with no headers.
func (c *Comparison) Process() Result {
	r := Result{ID: uuid.New()}

	if c.first.Empty() && c.second.Empty() {
		log.Debugf("compare %s: both sides empty", r.ID)
		c.result = r
		return r
	}

	a := build(c.first, c.buildOpts)
	b := build(c.second, c.buildOpts)

	r.Nodes = differ.Compare(a.Nodes, b.Nodes, c.diffOpts...)
	r.FirstHeader = header(c.first)
	r.SecondHeader = header(c.second)
	r.FirstAnomalies = a.Anomalies
	r.SecondAnomalies = b.Anomalies
	r.Summary = differ.Summarize(r.Nodes)

	log.Debugf("compare %s: %s", r.ID, r.Summary)
	switch {
	case r.Summary.Identical():
		log.Infof("both files look the same")
	case a.Len() > 0 && b.Len() > 0 && !r.Summary.CommonRoot:
		log.Infof("no common root between the two files")
	}

	c.result = r
	return r
}

// Result returns the latest result. Before the first Process it is the zero
// Result.
func (c *Comparison) Result() Result { return c.result }

// Nodes returns the merged sequence of the latest result.
func (c *Comparison) Nodes() []differ.Node { return c.result.Nodes }

// FirstHeader returns the first file's header from the latest result.
func (c *Comparison) FirstHeader() *step.Header { return c.result.FirstHeader }

// SecondHeader returns the second file's header from the latest result.
func (c *Comparison) SecondHeader() *step.Header { return c.result.SecondHeader }

func build(f *step.File, opts []hlr.Option) hlr.Tree {
	if f == nil {
		return hlr.Tree{}
	}
	return hlr.Build(f.Parts, f.Relations, opts...)
}

// header returns a copy so results do not alias caller data.
func header(f *step.File) *step.Header {
	if f == nil || f.Header == nil {
		return nil
	}
	h := *f.Header
	return &h
}
