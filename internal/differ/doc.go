// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ aligns two built assembly trees by signature and produces
// one merged sequence in which every node is classified as present in both
// files, only in the first, only in the second, or relocated. It also diffs
// file headers and hosts the interactive revision picker used to choose the
// two files.
package differ
