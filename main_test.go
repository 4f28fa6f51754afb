// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tfctl/stepctl/internal/config"
)

func TestDeduplicateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "empty args",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "only program and command",
			args:     []string{"stepctl", "tq"},
			expected: []string{"stepctl", "tq"},
		},
		{
			name:     "no duplicates",
			args:     []string{"stepctl", "tq", "a.json", "--output", "text", "--titles"},
			expected: []string{"stepctl", "tq", "a.json", "--output", "text", "--titles"},
		},
		{
			name:     "duplicate flag with value last wins",
			args:     []string{"stepctl", "tq", "--output", "json", "--titles", "--output", "text"},
			expected: []string{"stepctl", "tq", "--titles", "--output", "text"},
		},
		{
			name:     "duplicate boolean flag",
			args:     []string{"stepctl", "dq", "--titles", "--summary", "--titles"},
			expected: []string{"stepctl", "dq", "--summary", "--titles"},
		},
		{
			name:     "duplicate flag with equals syntax",
			args:     []string{"stepctl", "tq", "--output=json", "--titles", "--output=text"},
			expected: []string{"stepctl", "tq", "--titles", "--output=text"},
		},
		{
			name:     "mixed equals and space syntax",
			args:     []string{"stepctl", "tq", "--output=json", "--output", "text"},
			expected: []string{"stepctl", "tq", "--output", "text"},
		},
		{
			name:     "several flags with duplicates",
			args:     []string{"stepctl", "dq", "--only", "first", "--fields", "name", "--only", "second", "--fields", "name+rep"},
			expected: []string{"stepctl", "dq", "--only", "second", "--fields", "name+rep"},
		},
		{
			name:     "positional args preserved",
			args:     []string{"stepctl", "dq", "a.json", "b.json", "--output", "json", "--output", "text"},
			expected: []string{"stepctl", "dq", "a.json", "b.json", "--output", "text"},
		},
		{
			name:     "short flags deduplicated",
			args:     []string{"stepctl", "tq", "-o", "json", "-o", "text"},
			expected: []string{"stepctl", "tq", "-o", "text"},
		},
		{
			name:     "different flags not affected",
			args:     []string{"stepctl", "tq", "--color", "--no-cache"},
			expected: []string{"stepctl", "tq", "--color", "--no-cache"},
		},
		{
			name:     "triple duplicate",
			args:     []string{"stepctl", "tq", "--sort", "a", "--sort", "b", "--sort", "c"},
			expected: []string{"stepctl", "tq", "--sort", "c"},
		},
		{
			name:     "boolean flag does not swallow positional",
			args:     []string{"stepctl", "dq", "--chop", "revs", "+"},
			expected: []string{"stepctl", "dq", "--chop", "revs", "+"},
		},
		{
			name:     "terminator keeps the rest",
			args:     []string{"stepctl", "tq", "--titles", "--", "--titles"},
			expected: []string{"stepctl", "tq", "--titles", "--", "--titles"},
		},
		{
			name:     "value flag at end",
			args:     []string{"stepctl", "tq", "--titles", "--output"},
			expected: []string{"stepctl", "tq", "--titles", "--output"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, deduplicateFlags(tt.args))
		})
	}
}

func TestDeduplicateFlagsPreservesOrder(t *testing.T) {
	t.Parallel()

	args := []string{"stepctl", "tq", "--alpha", "--beta", "--gamma"}
	assert.Equal(t, []string{"stepctl", "tq", "--alpha", "--beta", "--gamma"}, deduplicateFlags(args))
}

func TestInjectConfigSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		insertIdx int
		entries   []string
		expected  []string
	}{
		{
			name:      "empty entries return args unchanged",
			args:      []string{"stepctl", "tq", "--titles"},
			insertIdx: 2,
			expected:  []string{"stepctl", "tq", "--titles"},
		},
		{
			name:      "single entry injected",
			args:      []string{"stepctl", "tq", "--titles"},
			insertIdx: 2,
			entries:   []string{"--color"},
			expected:  []string{"stepctl", "tq", "--color", "--titles"},
		},
		{
			name:      "multi-word entry split",
			args:      []string{"stepctl", "tq", "--titles"},
			insertIdx: 2,
			entries:   []string{"--output text"},
			expected:  []string{"stepctl", "tq", "--output", "text", "--titles"},
		},
		{
			name:      "multiple entries",
			args:      []string{"stepctl", "dq"},
			insertIdx: 2,
			entries:   []string{"--summary", "--output json"},
			expected:  []string{"stepctl", "dq", "--summary", "--output", "json"},
		},
		{
			name:      "insert at index 3",
			args:      []string{"stepctl", "tq", "a.json", "--titles"},
			insertIdx: 3,
			entries:   []string{"--chop"},
			expected:  []string{"stepctl", "tq", "a.json", "--chop", "--titles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, injectConfigSet(tt.args, tt.entries, tt.insertIdx))
		})
	}
}

func TestInjectConfigSetDoesNotAlias(t *testing.T) {
	t.Parallel()

	args := make([]string, 3, 10)
	copy(args, []string{"stepctl", "tq", "a.json"})
	out := injectConfigSet(args, []string{"--chop"}, 2)

	assert.Equal(t, []string{"stepctl", "tq", "a.json"}, args)
	assert.Equal(t, []string{"stepctl", "tq", "--chop", "a.json"}, out)
}

func TestProcessSetOnly(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "stepctl.yaml")
	data := "dq:\n  defaults: --titles\n  quick:\n    - --summary\n    - --output json\n"
	if err := os.WriteFile(cfg, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STEPCTL_CFG_FILE", cfg)
	if _, err := config.Load(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "defaults follow the command",
			args:     []string{"stepctl", "dq", "a.json", "b.json"},
			expected: []string{"stepctl", "dq", "--titles", "a.json", "b.json"},
		},
		{
			name:     "named set at its position",
			args:     []string{"stepctl", "dq", "a.json", "@quick", "b.json"},
			expected: []string{"stepctl", "dq", "a.json", "--summary", "--output", "json", "b.json"},
		},
		{
			name:     "unknown set is dropped",
			args:     []string{"stepctl", "dq", "@nope", "a.json"},
			expected: []string{"stepctl", "dq", "a.json"},
		},
		{
			name:     "no sets for other commands",
			args:     []string{"stepctl", "tq", "a.json"},
			expected: []string{"stepctl", "tq", "a.json"},
		},
		{
			name:     "flag instead of command",
			args:     []string{"stepctl", "--help"},
			expected: []string{"stepctl", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, processSetOnly(tt.args))
		})
	}
}

func TestHandleNakedCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"stepctl", "--help"}, handleNakedCommand([]string{"stepctl"}))
	assert.Equal(t, []string{"stepctl", "tq"}, handleNakedCommand([]string{"stepctl", "tq"}))
}
