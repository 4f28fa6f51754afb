// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/attrs"
	"github.com/tfctl/stepctl/internal/config"
)

// Markers prefix each tree line with the row's classification. Rows without
// a class, as from tq, get a blank.
var Markers = map[string]string{
	"both":      "=",
	"first":     "-",
	"second":    "+",
	"relocated": "~",
}

// classColors are the light/dark defaults, overridden by colors.<class>.
var classColors = map[string]lipgloss.AdaptiveColor{
	"both":      {Light: "#333333", Dark: "#d0d0d0"},
	"first":     {Light: "#b00020", Dark: "#ff5f5f"},
	"second":    {Light: "#007a00", Dark: "#5fd75f"},
	"relocated": {Light: "#0055b0", Dark: "#5fafff"},
}

// TreeWriter renders rows as an indented tree, one line per row: the class
// marker, two spaces per depth level, then the shown attrs. Rows must be in
// pre-order with "depth" and "class" projected.
func TreeWriter(
	resultSet []map[string]interface{},
	attrs attrs.AttrList,
	cmd *cli.Command,
	w io.Writer) {

	if w == nil {
		w = os.Stdout
	}

	if len(resultSet) == 0 {
		return
	}

	var styles map[string]lipgloss.Style
	if cmd.Bool("color") {
		styles = classStyles("colors")
	}

	if cmd.Metadata["header"] != nil {
		fmt.Fprintln(w, cmd.Metadata["header"].(string))
	}
	for _, line := range renderTree(resultSet, attrs, cmd.Int("padding"), styles) {
		fmt.Fprintln(w, line)
	}
	if cmd.Metadata["footer"] != nil {
		fmt.Fprintln(w, cmd.Metadata["footer"].(string))
	}
}

func renderTree(resultSet []map[string]interface{}, list attrs.AttrList, pad int, styles map[string]lipgloss.Style) []string {
	sep := strings.Repeat(" ", max(pad, 1))
	lines := make([]string, 0, len(resultSet))

	for _, row := range resultSet {
		class, _ := row["class"].(string)
		marker, ok := Markers[class]
		if !ok {
			marker = " "
		}

		depth := 0
		if d, ok := row["depth"].(float64); ok {
			depth = int(d)
		}

		var cells []string
		for _, attr := range list {
			if attr.Include {
				cells = append(cells, InterfaceToString(row[attr.OutputKey], "-"))
			}
		}

		line := marker + " " + strings.Repeat("  ", depth) + strings.Join(cells, sep)
		if style, ok := styles[class]; ok {
			line = style.Render(line)
		}
		lines = append(lines, line)
	}

	return lines
}

func classStyles(key string) map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style, len(classColors))
	for class, def := range classColors {
		var c lipgloss.TerminalColor = def
		if cfg, err := config.GetString(key + "." + class); err == nil {
			c = lipgloss.Color(cfg)
		}
		styles[class] = lipgloss.NewStyle().Foreground(c)
	}
	styles["first"] = styles["first"].Strikethrough(true)
	return styles
}
