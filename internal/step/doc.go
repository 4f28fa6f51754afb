// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package step holds the flat records extracted from a STEP AP242 file by an
// external reader: parts, the assembly-usage relations between them, and the
// HEADER section metadata. Records are plain values and are never mutated
// after load.
package step
