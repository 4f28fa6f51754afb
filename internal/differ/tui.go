// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tfctl/stepctl/internal/source"
)

// SelectRevisions lets the user tick two revisions. The pair comes back
// oldest first so it can be passed straight to a comparison. A nil result
// means the user quit.
func SelectRevisions(revs []source.Revision, opts ...tea.ProgramOption) ([]source.Revision, error) {
	p := tea.NewProgram(newPicker(revs), opts...)
	m, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("revision picker failed: %w", err)
	}
	return m.(picker).result(), nil
}

type pickerKeys struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Go     key.Binding
	Quit   key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Go:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "compare")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
}

var (
	pickerTitle    = lipgloss.NewStyle().Bold(true)
	pickerCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff"))
	pickerSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00"))
	pickerHelp     = lipgloss.NewStyle().Faint(true)
)

type picker struct {
	items    []source.Revision
	keys     pickerKeys
	cursor   int
	selected []int // positions in items, in tick order
	done     bool
}

func newPicker(revs []source.Revision) picker {
	return picker{items: revs, keys: defaultPickerKeys}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Quit):
		m.selected = nil
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Toggle):
		if len(m.items) == 0 {
			break
		}
		if i := m.position(m.cursor); i >= 0 {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
		} else if len(m.selected) < 2 {
			m.selected = append(m.selected, m.cursor)
		}
	case key.Matches(km, m.keys.Go):
		if len(m.selected) == 2 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m picker) View() string {
	var b strings.Builder
	b.WriteString(pickerTitle.Render("Select two revisions:"))
	b.WriteString("\n\n")

	for i, r := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = pickerCursor.Render(">")
		}
		mark := " "
		if m.position(i) >= 0 {
			mark = pickerSelected.Render("x")
		}
		fmt.Fprintf(&b, "%s [%s] %3d  %-40s %10s  %s\n", cursor, mark, r.Index, r.Name,
			humanize.Bytes(uint64(r.Size)), humanize.Time(r.Modified)) //nolint:gosec
	}

	help := []string{}
	for _, k := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Go, m.keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	b.WriteString("\n")
	b.WriteString(pickerHelp.Render(strings.Join(help, "  ")))
	b.WriteString("\n")
	return b.String()
}

func (m picker) position(item int) int {
	for i, s := range m.selected {
		if s == item {
			return i
		}
	}
	return -1
}

// result returns the two picked revisions, oldest (highest index) first.
func (m picker) result() []source.Revision {
	if !m.done || len(m.selected) != 2 {
		return nil
	}
	out := []source.Revision{m.items[m.selected[0]], m.items[m.selected[1]]}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index > out[j].Index })
	return out
}
