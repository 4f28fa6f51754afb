// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Revision is one dump file in a directory of revisions.
type Revision struct {
	// Index is the position in the newest-first listing, starting at 0.
	Index    int       `json:"index" yaml:"index"`
	Name     string    `json:"name" yaml:"name"`
	Path     string    `json:"path" yaml:"path"`
	Modified time.Time `json:"modified" yaml:"modified"`
	Size     int64     `json:"size" yaml:"size"`
}

// IsDump reports whether name has a dump extension.
func IsDump(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Revisions lists the dumps directly inside dir, newest first. Ties on
// modification time are broken by name.
func Revisions(dir string) ([]Revision, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	revs := make([]Revision, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsDump(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		revs = append(revs, Revision{
			Name:     e.Name(),
			Path:     filepath.Join(dir, e.Name()),
			Modified: info.ModTime(),
			Size:     info.Size(),
		})
	}

	sort.SliceStable(revs, func(i, j int) bool {
		if revs[i].Modified.Equal(revs[j].Modified) {
			return revs[i].Name < revs[j].Name
		}
		return revs[i].Modified.After(revs[j].Modified)
	})
	for i := range revs {
		revs[i].Index = i
	}

	return revs, nil
}
