// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/differ"
	"github.com/tfctl/stepctl/internal/meta"
	"github.com/tfctl/stepctl/internal/source"
	"github.com/tfctl/stepctl/internal/step"
)

var hqDefaultAttrs = []string{
	"file_path:file", ".name", "time_stamp", "originating_system",
	"preprocessor_version:preprocessor", "file_schema:schema",
	"!description", "!implementation_level", "!author", "!organization", "!authorisation",
}

// loadHeaders loads every SOURCE argument and returns their headers in
// argument order. A dump without a header yields an empty one carrying only
// its location.
func loadHeaders(ctx context.Context, cmd *cli.Command) ([]step.Header, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, fmt.Errorf("hq needs at least one SOURCE")
	}

	srcs := make([]source.Source, 0, len(args))
	for _, arg := range args {
		src, err := sourceFor(ctx, cmd, arg)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}

	headers := make([]step.Header, 0, len(srcs))
	for _, src := range srcs {
		f, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}
		var h step.Header
		if f.Header != nil {
			h = *f.Header
		}
		if h.FilePath == "" {
			h.FilePath = src.String()
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// diffHeaders writes the delta between the two SOURCE headers.
func diffHeaders(ctx context.Context, cmd *cli.Command, w io.Writer) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("--diff needs exactly two SOURCEs, got %d", cmd.NArg())
	}

	headers, err := loadHeaders(ctx, cmd)
	if err != nil {
		return err
	}

	text, modified, err := differ.DiffHeaders(&headers[0], &headers[1], cmd.Bool("color"))
	if err != nil {
		return err
	}
	if !modified {
		fmt.Fprintln(w, "headers are the same")
		return nil
	}
	log.Debugf("headers differ")
	fmt.Fprint(w, text)
	return nil
}

// hqCommandAction is the action handler for the "hq" subcommand.
func hqCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("diff") {
		if ShortCircuitTLDR(ctx, cmd, "hq") {
			return nil
		}
		return diffHeaders(ctx, cmd, stdout)
	}

	return NewQueryActionRunner(
		"hq",
		reflect.TypeOf(step.Header{}),
		hqDefaultAttrs,
		loadHeaders,
	).Run(ctx, cmd)
}

// hqCommandBuilder constructs the cli.Command for "hq", wiring metadata,
// flags, and action handlers.
func hqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "hq",
		Usage:     "header query",
		UsageText: "stepctl hq SOURCE... [options]\nstepctl hq --diff FIRST SECOND [options]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "show the delta between two headers",
				Value: false,
			},
		}, NewSourceFlags("hq")...),
		Action: hqCommandAction,
		Meta:   meta,
	}).Build()
}
