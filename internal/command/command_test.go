// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/meta"
	"github.com/tfctl/stepctl/internal/source"
)

// runCommand runs the command built by build with args and returns what it
// wrote. Commands share package state, so callers must not be parallel.
func runCommand(t *testing.T, build func(meta.Meta) *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })

	cmd := build(meta.Meta{})
	err := cmd.Run(context.Background(), append([]string{cmd.Name}, args...))
	return buf.String(), err
}

func decodeRows(t *testing.T, out string) []map[string]any {
	t.Helper()

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func column(rows []map[string]any, key string) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[key])
	}
	return out
}

// revDir copies both revisions into a fresh directory, rev_b newest.
func revDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	now := time.Now()
	for i, name := range []string{"rev_a.json", "rev_b.json"} {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		mtime := now.Add(time.Duration(i-2) * time.Hour)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	return dir
}

func classCounts(rows []map[string]any) map[string]int {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r["class"].(string)]++
	}
	return counts
}

func TestTqCommand(t *testing.T) {
	out, err := runCommand(t, tqCommandBuilder, "--output", "json", filepath.Join("testdata", "rev_a.json"))
	require.NoError(t, err)

	rows := decodeRows(t, out)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"Spider", "Arm", "Bolt"}, column(rows, "name"))
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, column(rows, "id"))
	assert.Equal(t, []any{float64(0), float64(1), float64(2)}, column(rows, "parent_id"))
	assert.Equal(t, "Bolt(Bolt1:1)", rows[2]["instance"])
	assert.NotContains(t, rows[0], "depth")
}

func TestTqCommand_Filter(t *testing.T) {
	out, err := runCommand(t, tqCommandBuilder,
		"--output", "json", "--filter", "depth>0", "--attrs", "depth",
		filepath.Join("testdata", "rev_a.json"))
	require.NoError(t, err)

	rows := decodeRows(t, out)
	assert.Equal(t, []any{"Arm", "Bolt"}, column(rows, "name"))
	assert.Equal(t, []any{float64(1), float64(2)}, column(rows, "depth"))
}

func TestTqCommand_DirSpec(t *testing.T) {
	dir := revDir(t)

	out, err := runCommand(t, tqCommandBuilder, "--output", "json", dir+"::REV~1")
	require.NoError(t, err)
	assert.Len(t, decodeRows(t, out), 3)

	out, err = runCommand(t, tqCommandBuilder, "--output", "json", dir)
	require.NoError(t, err)
	assert.Len(t, decodeRows(t, out), 4)
}

func TestTqCommand_Anomalies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dangling.json")
	data := `{"parts":[{"id":1,"type":"PD","name":"Spider"}],
"relations":[{"id":"Ghost1:1","relating_id":1,"related_id":9,"step_id":7,"type":"NAUO"}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out, err := runCommand(t, tqCommandBuilder, "--anomalies", "--output", "json", path)
	require.NoError(t, err)

	rows := decodeRows(t, out)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 9, rows[0]["part_id"])
	assert.NotEmpty(t, rows[0]["message"])
}

func TestTqCommand_Errors(t *testing.T) {
	_, err := runCommand(t, tqCommandBuilder)
	assert.Error(t, err)

	_, err = runCommand(t, tqCommandBuilder, filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)

	_, err = runCommand(t, tqCommandBuilder, "--fields", "colour", filepath.Join("testdata", "rev_a.json"))
	assert.Error(t, err)
}

func TestDqCommand(t *testing.T) {
	a := filepath.Join("testdata", "rev_a.json")
	b := filepath.Join("testdata", "rev_b.json")

	tests := []struct {
		name     string
		args     []string
		expected map[string]int
	}{
		{
			name:     "relocation",
			args:     []string{a, b},
			expected: map[string]int{"both": 2, "relocated": 1, "second": 1},
		},
		{
			name:     "no relocation",
			args:     []string{"--no-relocation", a, b},
			expected: map[string]int{"both": 2, "first": 1, "second": 2},
		},
		{
			name:     "only relocated",
			args:     []string{"--only", "relocated", a, b},
			expected: map[string]int{"relocated": 1},
		},
		{
			name:     "self",
			args:     []string{a, a},
			expected: map[string]int{"both": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, dqCommandBuilder, append([]string{"--output", "json"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, classCounts(decodeRows(t, out)))
		})
	}
}

func TestDqCommand_Order(t *testing.T) {
	out, err := runCommand(t, dqCommandBuilder, "--output", "json",
		filepath.Join("testdata", "rev_a.json"), filepath.Join("testdata", "rev_b.json"))
	require.NoError(t, err)

	rows := decodeRows(t, out)
	assert.Equal(t, []any{"Spider", "Arm", "Bolt", "Nut"}, column(rows, "name"))
	assert.Equal(t, []any{float64(1), float64(2), float64(3), float64(4)}, column(rows, "id"))
	assert.Equal(t, []any{float64(0), float64(1), float64(1), float64(1)}, column(rows, "parent_id"))
}

func TestDqCommand_Revisions(t *testing.T) {
	dir := revDir(t)

	out, err := runCommand(t, dqCommandBuilder, "--output", "json", dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"both": 2, "relocated": 1, "second": 1}, classCounts(decodeRows(t, out)))

	// Newest against itself.
	out, err = runCommand(t, dqCommandBuilder, "--output", "json", dir, "REV~0")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"both": 4}, classCounts(decodeRows(t, out)))

	_, err = runCommand(t, dqCommandBuilder, dir, "REV~5")
	assert.Error(t, err)
}

func TestDqCommand_Picker(t *testing.T) {
	dir := revDir(t)

	oldTerm, oldSelect := isTerminal, selectRevisions
	t.Cleanup(func() { isTerminal, selectRevisions = oldTerm, oldSelect })

	isTerminal = func() bool { return false }
	_, err := runCommand(t, dqCommandBuilder, dir, PickerArg)
	assert.Error(t, err)

	isTerminal = func() bool { return true }
	selectRevisions = func(revs []source.Revision) ([]source.Revision, error) {
		return []source.Revision{revs[1], revs[0]}, nil
	}
	out, err := runCommand(t, dqCommandBuilder, "--output", "json", dir, PickerArg)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"both": 2, "relocated": 1, "second": 1}, classCounts(decodeRows(t, out)))

	selectRevisions = func([]source.Revision) ([]source.Revision, error) { return nil, nil }
	out, err = runCommand(t, dqCommandBuilder, "--summary", dir, PickerArg)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDqCommand_Summary(t *testing.T) {
	a := filepath.Join("testdata", "rev_a.json")
	b := filepath.Join("testdata", "rev_b.json")

	out, err := runCommand(t, dqCommandBuilder, "--summary", "--output", "json", a, b)
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.EqualValues(t, 4, s["total"])
	assert.EqualValues(t, 2, s["both"])
	assert.EqualValues(t, 1, s["relocated"])
	assert.EqualValues(t, 1, s["second_only"])
	assert.Equal(t, true, s["common_root"])

	out, err = runCommand(t, dqCommandBuilder, "--summary", a, a)
	require.NoError(t, err)
	assert.Contains(t, out, "both files look the same")

	out, err = runCommand(t, dqCommandBuilder, "--summary", "--only", "relocated,second", a, b)
	require.NoError(t, err)
	assert.Equal(t, "relocated: 1\nsecond: 1\n", out)

	_, err = runCommand(t, dqCommandBuilder, "--summary", "--output", "tree", a, b)
	assert.Error(t, err)
}

func TestDqCommand_Errors(t *testing.T) {
	_, err := runCommand(t, dqCommandBuilder)
	assert.Error(t, err)

	_, err = runCommand(t, dqCommandBuilder, filepath.Join("testdata", "rev_a.json"))
	assert.Error(t, err)

	_, err = runCommand(t, dqCommandBuilder, "--only", "moved",
		filepath.Join("testdata", "rev_a.json"), filepath.Join("testdata", "rev_b.json"))
	assert.Error(t, err)
}

func TestHqCommand(t *testing.T) {
	a := filepath.Join("testdata", "rev_a.json")
	b := filepath.Join("testdata", "rev_b.json")

	out, err := runCommand(t, hqCommandBuilder, "--output", "json", a, b)
	require.NoError(t, err)

	rows := decodeRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"spider.stp", "spider.stp"}, column(rows, "name"))
	assert.Equal(t, []any{"SolidWorks 2023", "SolidWorks 2024"}, column(rows, "originating_system"))
	assert.Equal(t, []any{"AP214", "AP214"}, column(rows, "schema"))
	assert.Contains(t, rows[0]["file"], "rev_a.json")
}

func TestHqCommand_Diff(t *testing.T) {
	a := filepath.Join("testdata", "rev_a.json")
	b := filepath.Join("testdata", "rev_b.json")

	out, err := runCommand(t, hqCommandBuilder, "--diff", a, a)
	require.NoError(t, err)
	assert.Equal(t, "headers are the same\n", out)

	out, err = runCommand(t, hqCommandBuilder, "--diff", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "SolidWorks 2024")
	assert.NotContains(t, out, "rev_a.json")

	_, err = runCommand(t, hqCommandBuilder, "--diff", a)
	assert.Error(t, err)
}

func TestRqCommand(t *testing.T) {
	dir := revDir(t)

	out, err := runCommand(t, rqCommandBuilder, "--output", "json", dir)
	require.NoError(t, err)

	rows := decodeRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"rev_b.json", "rev_a.json"}, column(rows, "name"))
	assert.Equal(t, []any{float64(0), float64(1)}, column(rows, "index"))
	assert.Equal(t, []any{float64(4), float64(3)}, column(rows, "parts"))
	assert.Equal(t, []any{float64(3), float64(2)}, column(rows, "relations"))

	out, err = runCommand(t, rqCommandBuilder, "--output", "json", "--counts=false", dir)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(0), float64(0)}, column(decodeRows(t, out), "parts"))

	_, err = runCommand(t, rqCommandBuilder, filepath.Join("testdata", "rev_a.json"))
	assert.Error(t, err)
}

func TestCompletionScript(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")

	assert.Equal(t, bashCompletionScript, completionScript("bash"))
	assert.Equal(t, zshCompletionScript, completionScript("zsh"))
	assert.Equal(t, zshCompletionScript, completionScript(""))
	assert.Empty(t, completionScript("fish"))

	out, err := runCommand(t, completionCommandBuilder, "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -o filenames -F _stepctl stepctl")
}

func TestInitApp(t *testing.T) {
	app, err := InitApp(context.Background(), []string{"stepctl", "tq"})
	require.NoError(t, err)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], c.Name)
		}
	}
	assert.Equal(t, []string{"dq", "hq", "rq", "tq", "completion"}, names)
}
