// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/clientbook/internal/i18n"
)

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func (km menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Select, km.Quit}
}

func (km menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{km.Up, km.Down}, {km.Select, km.Quit}}
}

var _ help.KeyMap = menuKeyMap{}

func defaultMenuKeyMap() menuKeyMap {
	return menuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", i18n.T("menu.help.up")),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", i18n.T("menu.help.down")),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "right"),
			key.WithHelp("enter", i18n.T("menu.help.select")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", i18n.T("menu.help.quit")),
		),
	}
}

// menuModel is the bubbletea model behind the terminal menu. Digits jump
// straight to the matching entry.
type menuModel struct {
	entries []menuEntry
	cursor  int
	chosen  MenuItem
	done    bool
	keys    menuKeyMap
	help    help.Model
}

func newMenuModel() menuModel {
	return menuModel{
		entries: menuEntries,
		chosen:  ItemExit,
		keys:    defaultMenuKeyMap(),
		help:    help.New(),
	}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.entries) - 1
		}
	case key.Matches(km, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.entries)
	case key.Matches(km, m.keys.Select):
		m.chosen = m.entries[m.cursor].item
		m.done = true
		return m, tea.Quit
	case key.Matches(km, m.keys.Quit):
		m.chosen = ItemExit
		m.done = true
		return m, tea.Quit
	default:
		if item, ok := ParseMenuItem(km.String()); ok {
			m.chosen = item
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("menu.title")))
	b.WriteString("\n\n")
	for i, e := range m.entries {
		line := fmt.Sprintf("%d. %s", int(e.item), i18n.T(e.label))
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

// teaMenu runs a short-lived bubbletea program for every selection so that
// line input between selections owns the terminal.
type teaMenu struct {
	in  io.Reader
	out io.Writer
}

// NewTeaMenu returns the interactive arrow-key menu used on terminals.
func NewTeaMenu(in io.Reader, out io.Writer) MenuSelector {
	return &teaMenu{in: in, out: out}
}

func (t *teaMenu) Select(ctx context.Context) (MenuItem, error) {
	p := tea.NewProgram(newMenuModel(),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		return ItemExit, fmt.Errorf("menu: %w", err)
	}
	m, ok := final.(menuModel)
	if !ok || !m.done {
		return ItemExit, nil
	}
	return m.chosen, nil
}
