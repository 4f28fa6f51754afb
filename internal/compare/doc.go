// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package compare runs a full comparison of two loaded files: it builds the
// assembly tree of each side and merges them into one classified sequence.
// Each Process call produces a fresh, immutable Result.
package compare
