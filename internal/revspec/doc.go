// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package revspec turns user supplied revision specs into revisions picked
// from a newest-first listing.
package revspec
