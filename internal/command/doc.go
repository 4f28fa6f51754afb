// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for stepctl. tq shows the
// assembly tree of one dump, dq the merged comparison of two, hq their
// headers and rq the revisions in a directory. It wires flags, validators,
// actions, and shell completion for those subcommands.
package command
