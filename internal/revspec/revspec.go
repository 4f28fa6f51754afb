// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package revspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tfctl/stepctl/internal/source"
)

// ErrNotFound is returned when a spec matches no revision.
var ErrNotFound = errors.New("revision not found")

// Resolve returns one revision per spec, in spec order. revs must be newest
// first, as returned by source.Revisions. A spec is one of:
//
//	REV~N   the N-th newest (REV~0 is the newest)
//	0, -N   same as REV~N
//	N       the N-th entry, counting from 1
//	path    an existing file, whether or not it is listed
//	prefix  the newest revision whose name starts with prefix
//
// With no specs, the newest revision is returned.
func Resolve(revs []source.Revision, specs ...string) ([]source.Revision, error) {
	if len(specs) == 0 {
		specs = []string{"REV~0"}
	}

	result := make([]source.Revision, 0, len(specs))
	for _, spec := range specs {
		rev, err := resolveSpec(spec, revs)
		if err != nil {
			return nil, err
		}
		result = append(result, rev)
	}
	return result, nil
}

func resolveSpec(spec string, revs []source.Revision) (source.Revision, error) {
	spec = strings.TrimSpace(spec)

	switch {
	case spec == "":
		return source.Revision{}, fmt.Errorf("empty revision spec")

	case strings.HasPrefix(strings.ToUpper(spec), "REV~"):
		return resolveRelative(spec, revs)

	case isNumeric(spec):
		return resolveNumeric(spec, revs)

	case isFile(spec):
		return resolveFile(spec)

	default:
		return resolvePrefix(spec, revs)
	}
}

func resolveRelative(spec string, revs []source.Revision) (source.Revision, error) {
	parts := strings.Split(spec, "~")
	if len(parts) != 2 {
		return source.Revision{}, fmt.Errorf("invalid revision spec format: %s", spec)
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return source.Revision{}, fmt.Errorf("invalid revision index: %s", parts[1])
	}

	return at(n, revs)
}

// resolveNumeric treats 0 and negatives as offsets from the newest and
// positives as 1-based positions.
func resolveNumeric(spec string, revs []source.Revision) (source.Revision, error) {
	n, _ := strconv.Atoi(spec)
	if n <= 0 {
		return at(-n, revs)
	}
	return at(n-1, revs)
}

func at(i int, revs []source.Revision) (source.Revision, error) {
	if i < 0 || i >= len(revs) {
		return source.Revision{}, fmt.Errorf("index %d out of range for %d revisions: %w", i, len(revs), ErrNotFound)
	}
	return revs[i], nil
}

// resolveFile builds an unlisted revision for a path. Its Index is -1.
func resolveFile(spec string) (source.Revision, error) {
	info, err := os.Stat(spec)
	if err != nil {
		return source.Revision{}, fmt.Errorf("failed to stat %s: %w", spec, err)
	}
	return source.Revision{
		Index:    -1,
		Name:     filepath.Base(spec),
		Path:     spec,
		Modified: info.ModTime(),
		Size:     info.Size(),
	}, nil
}

func resolvePrefix(spec string, revs []source.Revision) (source.Revision, error) {
	for _, r := range revs {
		if strings.HasPrefix(r.Name, spec) {
			return r, nil
		}
	}
	return source.Revision{}, fmt.Errorf("no revision named %s*: %w", spec, ErrNotFound)
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isFile(s string) bool {
	info, err := os.Stat(s)
	return err == nil && !info.IsDir()
}
