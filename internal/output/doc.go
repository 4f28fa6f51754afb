// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output filters, sorts and renders query rows as a table, JSON,
// YAML, raw bytes or an indented tree with per-class markers. It also dumps
// the attribute schema of a row type for --schema.
package output
