// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/meta"
	"github.com/tfctl/stepctl/internal/source"
	"github.com/tfctl/stepctl/internal/util"
)

// rqRow is one revision with the size of its content.
type rqRow struct {
	source.Revision
	Parts     int `json:"parts" yaml:"parts"`
	Relations int `json:"relations" yaml:"relations"`
}

var rqDefaultAttrs = []string{
	"index", ".name", "modified::T", "size", "parts", "relations", "!path",
}

// rqCommandAction is the action handler for the "rq" subcommand. It lists the
// dumps of one directory, newest first.
func rqCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewQueryActionRunner(
		"rq",
		reflect.TypeOf(rqRow{}),
		rqDefaultAttrs,
		func(ctx context.Context, cmd *cli.Command) ([]rqRow, error) {
			if cmd.NArg() != 1 {
				return nil, fmt.Errorf("rq needs exactly one DIR, got %d", cmd.NArg())
			}

			dir := cmd.Args().First()
			if !util.IsDir(dir) {
				return nil, fmt.Errorf("%s is not a directory", dir)
			}

			revs, err := source.Revisions(dir)
			if err != nil {
				return nil, err
			}

			rows := make([]rqRow, 0, len(revs))
			for _, rev := range revs {
				row := rqRow{Revision: rev}
				if cmd.Bool("counts") {
					countContent(ctx, &row)
				}
				rows = append(rows, row)
			}
			return rows, nil
		},
	).Run(ctx, cmd)
}

// countContent fills in the part and relation counts. A dump that does not
// load keeps zero counts.
func countContent(ctx context.Context, row *rqRow) {
	src, err := source.NewSource(ctx, row.Path, source.WithValidation(false))
	if err != nil {
		log.Warnf("skipping counts for %s: %v", row.Name, err)
		return
	}
	f, err := src.Load(ctx)
	if err != nil {
		log.Warnf("skipping counts for %s: %v", row.Name, err)
		return
	}
	row.Parts = len(f.Parts)
	row.Relations = len(f.Relations)
}

// rqCommandBuilder constructs the cli.Command for "rq", wiring metadata,
// flags, and action handlers.
func rqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "rq",
		Usage:     "revision query",
		UsageText: "stepctl rq DIR [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "counts",
				Usage: "load each revision to count its parts and relations",
				Value: true,
			},
		},
		Action: rqCommandAction,
		Meta:   meta,
	}).Build()
}
