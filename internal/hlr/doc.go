// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package hlr builds the High-Level Representation of a STEP assembly: the
// ordered tree of part occurrences derived from a file's flat part and
// relation records.
//
// Each occurrence is identified by a signature, the path of equality keys
// from its root down to itself. Signatures never include file-local numeric
// ids, so two independently exported files produce equal signatures for the
// same structural position. Siblings that share a key are told apart by an
// occurrence counter ("#2", "#3", ...), which makes every signature unique
// within one tree.
//
// The tree is flattened in pre-order with sequential local ids starting at 1.
// A ParentLocalID of 0 marks a root.
package hlr
