// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/hlr"
	"github.com/tfctl/stepctl/internal/meta"
)

// tqDefaultAttrs are the columns of a tree row. The hidden ones are there to
// filter and sort on.
var tqDefaultAttrs = []string{
	"id", "parent_id", "name", "type", "representation_type", "instance", "signature",
	"!depth", "!label", "!path", "!key", "!occurrence", "!part_id", "!kind", "!mapping_resolved",
}

// tqAnomalyAttrs are the columns of an --anomalies row. The leading dots keep
// kind and part_id from resolving to their row aliases.
var tqAnomalyAttrs = []string{".kind", ".part_id", "label", "message"}

// loadTree loads the single SOURCE argument and builds its tree.
func loadTree(ctx context.Context, cmd *cli.Command) (hlr.Tree, error) {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return hlr.Tree{}, fmt.Errorf("%s needs exactly one SOURCE, got %d", cmd.Name, len(args))
	}

	src, err := sourceFor(ctx, cmd, args[0])
	if err != nil {
		return hlr.Tree{}, err
	}
	f, err := src.Load(ctx)
	if err != nil {
		return hlr.Tree{}, err
	}

	opts, err := treeOptions(cmd)
	if err != nil {
		return hlr.Tree{}, err
	}

	tree := hlr.Build(f.Parts, f.Relations, opts...)
	log.Debugf("tree %s: nodes=%d anomalies=%d", src, tree.Len(), len(tree.Anomalies))
	return tree, nil
}

// tqCommandAction is the action handler for the "tq" subcommand. It builds
// the assembly tree of one dump and emits its rows, or its anomalies with
// --anomalies.
func tqCommandAction(ctx context.Context, cmd *cli.Command) error {
	var postProcess func([]map[string]interface{}) error
	if cmd.Bool("chop") {
		postProcess = func(dataset []map[string]interface{}) error {
			chopPrefix(dataset)
			return nil
		}
	}

	if cmd.Bool("anomalies") {
		return NewQueryActionRunner(
			"tq",
			reflect.TypeOf(hlr.Anomaly{}),
			tqAnomalyAttrs,
			func(ctx context.Context, cmd *cli.Command) ([]hlr.Anomaly, error) {
				tree, err := loadTree(ctx, cmd)
				return tree.Anomalies, err
			},
		).Run(ctx, cmd)
	}

	runner := NewQueryActionRunner(
		"tq",
		reflect.TypeOf(hlr.Node{}),
		tqDefaultAttrs,
		func(ctx context.Context, cmd *cli.Command) ([]hlr.Node, error) {
			tree, err := loadTree(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if n := len(tree.Anomalies); n > 0 {
				log.Warnf("%d anomalies while building the tree, see --anomalies", n)
			}
			return tree.Nodes, nil
		},
	)
	runner.PostProcess = postProcess
	return runner.Run(ctx, cmd)
}

// tqCommandBuilder constructs the cli.Command for "tq", wiring metadata,
// flags, and action handlers.
func tqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "tq",
		Usage:     "tree query",
		UsageText: "stepctl tq SOURCE [options]\n\nSOURCE is a dump file, an s3:// URL or DIR[::REV].",
		Flags: append(append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "anomalies",
				Usage: "list the problems found while building the tree",
				Value: false,
			},
			chopFlag,
		}, NewTreeFlags("tq")...), NewSourceFlags("tq")...),
		Action: tqCommandAction,
		Meta:   meta,
	}).Build()
}
