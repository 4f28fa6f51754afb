// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/cacheutil"
	"github.com/tfctl/stepctl/internal/config"
	"github.com/tfctl/stepctl/internal/meta"
)

// InitApp builds the stepctl command tree for args.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// args[1] is the subcommand and also the config namespace. It could be
	// -h/--help, so ignore it if it looks like a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}
	config.Config.Namespace = ns

	meta := meta.Meta{
		Args:        args,
		Config:      config.Config,
		Context:     ctx,
		Cache:       cacheutil.Open(),
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "stepctl",
		Usage: "STEP assembly structure control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "stepctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		dqCommandBuilder(meta),
		hqCommandBuilder(meta),
		rqCommandBuilder(meta),
		tqCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
