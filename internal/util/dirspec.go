// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"os"
	"path/filepath"
	"strings"
)

// DirSpecSeparator splits a directory from a revision spec, "dumps::REV~1".
const DirSpecSeparator = "::"

// ParseDirSpec parses "DIR[::REV]" and returns the absolute directory and the
// revision spec, which is empty when none was given. It returns an error if
// DIR does not exist, is empty or is not a directory.
func ParseDirSpec(spec string) (string, string, error) {
	if spec == "" {
		return "", "", os.ErrInvalid
	}

	var rev string
	parts := strings.Split(spec, DirSpecSeparator)
	if len(parts) > 1 {
		rev = parts[1]
	}

	dir := parts[0]
	if dir == "" {
		return "", "", os.ErrInvalid
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		dir = filepath.Join(cwd, dir)
	}

	if r, err := os.Stat(dir); err != nil {
		return "", "", err
	} else if !r.IsDir() {
		return "", "", os.ErrInvalid
	}

	return dir, rev, nil
}

// IsDir reports whether spec names an existing directory, with or without a
// revision suffix.
func IsDir(spec string) bool {
	_, _, err := ParseDirSpec(spec)
	return err == nil
}
