// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tfctl/stepctl/internal/step"
)

// Local is a dump on the local file system. A leading "~/" expands to the
// user's home directory.
type Local struct {
	Path     string
	validate bool
}

func (l *Local) Load(ctx context.Context) (*step.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := expandHome(l.Path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	return decodeAndValidate(data, path, l.validate)
}

func (l *Local) String() string { return l.Path }

func expandHome(p string) (string, error) {
	if len(p) < 2 || p[:2] != "~/" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, p[2:]), nil
}
