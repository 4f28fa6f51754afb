// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package naming recognizes occurrence labels that a CAD application derived
// from the part name, as opposed to labels a user typed.
package naming
