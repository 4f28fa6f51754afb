// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"regexp"
	"strings"
)

var (
	// "Spider1:1", "Spider-2:3", "Spider <1>"
	occurrenceSuffix = regexp.MustCompile(`(?:[\s_.-]*<?\d+>?)?(?::\d+)?$`)
	camelBoundary    = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonAlnum         = regexp.MustCompile(`[^a-z0-9]+`)
)

// Base strips the occurrence suffix from label: a trailing instance number
// with optional separator or angle brackets, then an optional ":n".
func Base(label string) string {
	return occurrenceSuffix.ReplaceAllString(strings.TrimSpace(label), "")
}

// IsDerivedLabel reports whether label is the default a CAD application
// gives an occurrence of part, e.g. "Spider1:1" or "spider-2" for "Spider".
// Case, camelCase boundaries and separators are ignored.
func IsDerivedLabel(part, label string) bool {
	if part == "" || label == "" {
		return false
	}
	base := Base(label)
	if base == "" {
		return false
	}
	return normalize(base) == normalize(part)
}

func normalize(s string) string {
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}
