// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/toeirei/clientbook/internal/i18n"
)

// MenuItem is a main menu choice. The values are the keys typed in the
// numbered menu.
type MenuItem int

const (
	ItemExit MenuItem = iota
	ItemShowAll
	ItemAddClient
	ItemAddPhone
	ItemUpdateClient
	ItemDeletePhone
	ItemDeleteClient
	ItemFindClient
	ItemDemo
)

type menuEntry struct {
	item  MenuItem
	label string // i18n message id
}

// menuEntries lists the menu in display order, exit last.
var menuEntries = []menuEntry{
	{ItemShowAll, "menu.show_all"},
	{ItemAddClient, "menu.add_client"},
	{ItemAddPhone, "menu.add_phone"},
	{ItemUpdateClient, "menu.update_client"},
	{ItemDeletePhone, "menu.delete_phone"},
	{ItemDeleteClient, "menu.delete_client"},
	{ItemFindClient, "menu.find_client"},
	{ItemDemo, "menu.demo"},
	{ItemExit, "menu.exit"},
}

// ParseMenuItem converts typed input such as "3" into a MenuItem.
func ParseMenuItem(s string) (MenuItem, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < int(ItemExit) || n > int(ItemDemo) {
		return 0, false
	}
	return MenuItem(n), true
}

// MenuSelector asks the user for the next main menu action.
type MenuSelector interface {
	Select(ctx context.Context) (MenuItem, error)
}

// promptMenu prints the numbered menu and reads the choice as a line.
type promptMenu struct {
	in  LineReader
	out io.Writer
}

// NewPromptMenu returns a MenuSelector that prints the numbered menu to out
// and reads the choice from in.
func NewPromptMenu(in LineReader, out io.Writer) MenuSelector {
	return &promptMenu{in: in, out: out}
}

func (m *promptMenu) Select(ctx context.Context) (MenuItem, error) {
	for {
		if err := ctx.Err(); err != nil {
			return ItemExit, err
		}
		_, _ = fmt.Fprintln(m.out)
		_, _ = fmt.Fprintln(m.out, titleStyle.Render(i18n.T("menu.title")))
		for _, e := range menuEntries {
			_, _ = fmt.Fprintf(m.out, "%d. %s\n", int(e.item), i18n.T(e.label))
		}
		line, err := m.in.ReadLine(i18n.T("menu.prompt"))
		if err != nil {
			return ItemExit, err
		}
		if item, ok := ParseMenuItem(line); ok {
			return item, nil
		}
		_, _ = fmt.Fprintln(m.out, errorStyle.Render(i18n.T("menu.invalid", line)))
	}
}
