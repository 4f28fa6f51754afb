// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/config"
)

var (
	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the row schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}

	chopFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:  "chop",
		Usage: "chop the common leading segments from paths and signatures",
		Value: false,
	}
)

// NewGlobalFlags returns the output shaping flags every query command
// carries. ns is the command name used to find per-command config values.
func NewGlobalFlags(ns string) (flags []cli.Flag) {
	cfg := configFile()

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
			Sources: configChain(ns, "color", cfg, "STEPCTL_COLOR"),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw, tree)",
			Value:   "text",
			Sources: configChain(ns, "output", cfg),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:    "padding",
			Usage:   "spaces between text columns",
			Value:   2,
			Sources: configChain(ns, "padding", cfg),
			Validator: func(value int) error {
				return FlagValidators(value, PaddingValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
			Sources: configChain(ns, "titles", cfg),
		},
	}

	return
}

// NewTreeFlags returns the flags that shape how a dump becomes a tree.
func NewTreeFlags(ns string) []cli.Flag {
	cfg := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "fields",
			Usage:   "signature key fields (name, name+rep, name+rep+kind)",
			Value:   "name+rep",
			Sources: configChain(ns, "signature.fields", cfg, "STEPCTL_SIGNATURE_FIELDS"),
			Validator: func(value string) error {
				return FlagValidators(value, FieldsValidator)
			},
		},
		&cli.StringFlag{
			Name:    "root",
			Usage:   "name prefixed to every instance path",
			Sources: configChain(ns, "root", cfg),
		},
	}
}

// NewSourceFlags returns the flags used to reach s3:// dumps.
func NewSourceFlags(ns string) []cli.Flag {
	cfg := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "AWS shared config profile for s3:// sources",
			Sources: configChain(ns, "profile", cfg, "AWS_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region for s3:// sources",
			Sources: configChain(ns, "region", cfg, "AWS_REGION", "AWS_DEFAULT_REGION"),
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "always download s3:// sources",
			Value: false,
		},
	}
}

// configChain sources a flag from env vars, then ns.key and key in the config
// file.
func configChain(ns string, key string, path string, envs ...string) cli.ValueSourceChain {
	chain := cli.EnvVars(envs...)
	if path == "" {
		return chain
	}

	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(path)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(key, altsrc.StringSourcer(path)))

	return chain
}

// configFile is the config path or "" when there is none.
func configFile() string {
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return path
}

// pathHas checks if the given executable is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
