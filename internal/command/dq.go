// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/stepctl/internal/compare"
	"github.com/tfctl/stepctl/internal/config"
	"github.com/tfctl/stepctl/internal/differ"
	"github.com/tfctl/stepctl/internal/hlr"
	"github.com/tfctl/stepctl/internal/meta"
	"github.com/tfctl/stepctl/internal/revspec"
	"github.com/tfctl/stepctl/internal/source"
	"github.com/tfctl/stepctl/internal/util"
)

// PickerArg as the second argument of "dq DIR +" opens the revision picker.
const PickerArg = "+"

// dqRow mirrors the JSON of a differ.Node for --schema.
type dqRow struct {
	differ.Node
	Class    differ.Kind `json:"class"`
	Original *differ.Ref `json:"original,omitempty"`
}

var dqDefaultAttrs = []string{
	"class", "id", "parent_id", "name", "instance", "signature",
	"!depth", "!first_id", "!second_id", "!label", "!path", "!type", "!representation_type",
	"!key", "!original.signature:from",
}

// isTerminal is swapped by tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// selectRevisions is swapped by tests.
var selectRevisions = func(revs []source.Revision) ([]source.Revision, error) {
	return differ.SelectRevisions(revs)
}

// dqSources resolves the positional arguments to the two sides of the
// comparison:
//
//	dq FIRST SECOND      two files, s3:// URLs or DIR::REV specs
//	dq DIR [REV [REV]]   revisions of DIR, REV~1 and REV~0 by default
//	dq DIR +             revisions of DIR picked interactively
//
// Both sources are nil when the picker was quit.
func dqSources(ctx context.Context, cmd *cli.Command) (source.Source, source.Source, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 || len(args) > 3 {
		return nil, nil, fmt.Errorf("dq needs FIRST SECOND, DIR [REV [REV]] or DIR +")
	}

	dir, rev, err := util.ParseDirSpec(args[0])
	if err != nil || rev != "" {
		if len(args) != 2 {
			return nil, nil, fmt.Errorf("dq needs FIRST SECOND, DIR [REV [REV]] or DIR +")
		}
		first, err := sourceFor(ctx, cmd, args[0])
		if err != nil {
			return nil, nil, err
		}
		second, err := sourceFor(ctx, cmd, args[1])
		if err != nil {
			return nil, nil, err
		}
		return first, second, nil
	}

	revs, err := source.Revisions(dir)
	if err != nil {
		return nil, nil, err
	}

	var picked []source.Revision
	specs := args[1:]
	switch {
	case len(specs) == 1 && specs[0] == PickerArg:
		if !isTerminal() {
			return nil, nil, errors.New("the revision picker needs a terminal")
		}
		if len(revs) < 2 {
			return nil, nil, fmt.Errorf("%s has %d revisions, need at least 2: %w", dir, len(revs), revspec.ErrNotFound)
		}
		picked, err = selectRevisions(revs)
		if err != nil {
			return nil, nil, err
		}
		if picked == nil {
			log.Debugf("picker quit")
			return nil, nil, nil
		}
	case len(specs) == 0:
		picked, err = revspec.Resolve(revs, "REV~1", "REV~0")
	case len(specs) == 1:
		picked, err = revspec.Resolve(revs, specs[0], "REV~0")
	default:
		picked, err = revspec.Resolve(revs, specs...)
	}
	if err != nil {
		return nil, nil, err
	}

	log.Debugf("comparing %s with %s", picked[0].Path, picked[1].Path)

	opts := sourceOptions(cmd)
	first, err := source.NewSource(ctx, picked[0].Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	second, err := source.NewSource(ctx, picked[1].Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// dqCompare loads both sides concurrently and compares them. The result is
// nil when the picker was quit.
func dqCompare(ctx context.Context, cmd *cli.Command) (*compare.Result, error) {
	first, second, err := dqSources(ctx, cmd)
	if err != nil || first == nil {
		return nil, err
	}

	a, b, err := source.LoadPair(ctx, first, second)
	if err != nil {
		return nil, err
	}

	opts, err := compareOptions(cmd)
	if err != nil {
		return nil, err
	}

	c := compare.New(opts...)
	c.SetData(a, b)
	r := c.Process()

	if cmd.Bool("titles") && cmd.Metadata != nil {
		cmd.Metadata["header"] = fmt.Sprintf("%s .. %s", first, second)
	}
	return &r, nil
}

// compareOptions maps the tree flags and relocation settings. Relocation is
// on unless the relocation config key is false or --no-relocation is set.
func compareOptions(cmd *cli.Command) ([]compare.Option, error) {
	keyFn, err := hlr.KeyFuncByName(cmd.String("fields"))
	if err != nil {
		return nil, err
	}

	relocate, err := config.GetBool("relocation", true)
	if err != nil {
		log.Warnf("ignoring relocation config: %v", err)
		relocate = true
	}
	relocate = relocate && !cmd.Bool("no-relocation")

	return []compare.Option{
		compare.WithKeyFunc(keyFn),
		compare.WithRootName(cmd.String("root")),
		compare.WithRelocation(relocate),
	}, nil
}

// onlyKinds keeps the nodes whose kind is listed. An empty list keeps all.
func onlyKinds(nodes []differ.Node, kinds []differ.Kind) []differ.Node {
	if len(kinds) == 0 {
		return nodes
	}
	out := make([]differ.Node, 0, len(nodes))
	for _, n := range nodes {
		if slices.Contains(kinds, n.Kind()) {
			out = append(out, n)
		}
	}
	return out
}

// dqSummary is what --summary emits.
type dqSummary struct {
	differ.Summary  `yaml:",inline"`
	FirstAnomalies  int `json:"first_anomalies" yaml:"first_anomalies"`
	SecondAnomalies int `json:"second_anomalies" yaml:"second_anomalies"`
}

// writeSummary renders the comparison counts in the --output format. With
// --only the text form lists just the selected classes.
func writeSummary(r *compare.Result, cmd *cli.Command, w io.Writer) error {
	kinds, err := parseKinds(cmd.String("only"))
	if err != nil {
		return err
	}

	s := dqSummary{
		Summary:         r.Summary,
		FirstAnomalies:  len(r.FirstAnomalies),
		SecondAnomalies: len(r.SecondAnomalies),
	}

	switch cmd.String("output") {
	case "json", "raw":
		return json.NewEncoder(w).Encode(s)
	case "yaml":
		return yaml.NewEncoder(w).Encode(s)
	}

	if len(kinds) > 0 {
		for _, k := range kinds {
			fmt.Fprintf(w, "%s: %s\n", k, humanize.Comma(int64(s.Count(k))))
		}
	} else {
		fmt.Fprintln(w, s.Summary)
	}
	switch {
	case s.Identical():
		fmt.Fprintln(w, "both files look the same")
	case s.Total > 0 && !s.CommonRoot:
		fmt.Fprintln(w, "no common root between the two files")
	}
	if s.FirstAnomalies+s.SecondAnomalies > 0 {
		fmt.Fprintf(w, "anomalies: %d first, %d second\n", s.FirstAnomalies, s.SecondAnomalies)
	}
	return nil
}

// dqCommandAction is the action handler for the "dq" subcommand. It compares
// two dumps and emits the merged rows, or the counts with --summary.
func dqCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("summary") {
		if ShortCircuitTLDR(ctx, cmd, "dq") {
			return nil
		}
		r, err := dqCompare(ctx, cmd)
		if err != nil || r == nil {
			return err
		}
		return writeSummary(r, cmd, stdout)
	}

	runner := NewQueryActionRunner(
		"dq",
		reflect.TypeOf(dqRow{}),
		dqDefaultAttrs,
		func(ctx context.Context, cmd *cli.Command) ([]differ.Node, error) {
			kinds, err := parseKinds(cmd.String("only"))
			if err != nil {
				return nil, err
			}

			r, err := dqCompare(ctx, cmd)
			if err != nil || r == nil {
				return nil, err
			}

			if cmd.Bool("titles") && cmd.Metadata != nil {
				cmd.Metadata["footer"] = r.Summary.String()
			}
			return onlyKinds(r.Nodes, kinds), nil
		},
	)
	if cmd.Bool("chop") {
		runner.PostProcess = func(dataset []map[string]interface{}) error {
			chopPrefix(dataset)
			return nil
		}
	}
	return runner.Run(ctx, cmd)
}

// dqCommandBuilder constructs the cli.Command for "dq", wiring metadata,
// flags, and action handlers.
func dqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:  "dq",
		Usage: "diff query",
		UsageText: "stepctl dq FIRST SECOND [options]\n" +
			"stepctl dq DIR [REV [REV]] [options]\n" +
			"stepctl dq DIR + [options]",
		Flags: append(append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "no-relocation",
				Usage: "report moved parts as removed and added",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "only",
				Usage: "comma-separated classes to keep (both, first, second, relocated)",
				Validator: func(value string) error {
					return FlagValidators(value, OnlyValidator)
				},
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "show counts per class instead of rows",
				Value: false,
			},
			chopFlag,
		}, NewTreeFlags("dq")...), NewSourceFlags("dq")...),
		Action: dqCommandAction,
		Meta:   meta,
	}).Build()
}
