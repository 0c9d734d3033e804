// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package console implements the interactive menu for managing clients and
// their phone numbers. It talks to the store only through the repository and
// searcher interfaces, so it runs the same against sqlite, postgres and mysql.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/i18n"
	"github.com/toeirei/clientbook/internal/logging"
	"golang.org/x/term"
)

// DemoFunc runs the walkthrough behind menu item 8.
type DemoFunc func(ctx context.Context, out io.Writer) error

// Options configure a Controller. Repo, Searcher, In and Out are required.
type Options struct {
	Repo     db.ClientRepository
	Searcher db.ClientSearcher
	In       LineReader
	Out      io.Writer
	// Menu defaults to the numbered prompt menu read through In.
	Menu MenuSelector
	// Demo defaults to RunDemo.
	Demo DemoFunc
}

// Controller drives the main menu loop.
type Controller struct {
	repo     db.ClientRepository
	searcher db.ClientSearcher
	in       LineReader
	out      io.Writer
	menu     MenuSelector
	demo     DemoFunc
}

// New builds a Controller from opts.
func New(opts Options) *Controller {
	c := &Controller{
		repo:     opts.Repo,
		searcher: opts.Searcher,
		in:       opts.In,
		out:      opts.Out,
		menu:     opts.Menu,
		demo:     opts.Demo,
	}
	if c.menu == nil {
		c.menu = NewPromptMenu(c.in, c.out)
	}
	if c.demo == nil {
		c.demo = RunDemo
	}
	return c
}

// MenuStyle selects the terminal front end.
type MenuStyle string

const (
	// MenuTUI is the arrow-key menu with plain line input.
	MenuTUI MenuStyle = "tui"
	// MenuPrompt is the numbered menu read through the readline editor.
	MenuPrompt MenuStyle = "prompt"
)

// ParseMenuStyle maps a configured style name to a MenuStyle, defaulting to MenuTUI.
func ParseMenuStyle(s string) MenuStyle {
	if MenuStyle(s) == MenuPrompt {
		return MenuPrompt
	}
	return MenuTUI
}

// Session is the part of a store the console needs.
type Session interface {
	db.ClientRepository
	db.ClientSearcher
}

// NewForTerminal wires the controller to stdin and stdout. Redirected input
// always gets the numbered menu with plain line reading so that scripted
// input works. The readline editor and bubbletea both read stdin ahead, so
// a terminal session uses one of them, never both.
func NewForTerminal(store Session, style MenuStyle) (*Controller, error) {
	opts := Options{Repo: store, Searcher: store, Out: os.Stdout}
	switch {
	case !term.IsTerminal(int(os.Stdin.Fd())):
		opts.In = NewScannerReader(os.Stdin, os.Stdout)
	case style == MenuPrompt:
		rl, err := NewReadlineReader(os.Stdout)
		if err != nil {
			return nil, err
		}
		opts.In = rl
	default:
		opts.In = NewScannerReader(os.Stdin, os.Stdout)
		opts.Menu = NewTeaMenu(os.Stdin, os.Stdout)
	}
	return New(opts), nil
}

// Close releases the line reader.
func (c *Controller) Close() error {
	return c.in.Close()
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Only connectivity failures end the session with an error; every other
// action error is reported and the menu comes back.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := c.menu.Select(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
			c.println(i18n.T("console.goodbye"))
			return nil
		}
		if err != nil {
			return err
		}
		if item == ItemExit {
			c.println(i18n.T("console.goodbye"))
			return nil
		}
		err = c.Dispatch(ctx, item)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			c.println(i18n.T("console.goodbye"))
			return nil
		case errors.Is(err, ErrInterrupted):
			c.println(i18n.T("console.cancelled"))
		case errors.Is(err, db.ErrConnectivity):
			c.fail(err)
			return err
		default:
			c.fail(err)
		}
	}
}

// Dispatch runs the action behind a single menu item.
func (c *Controller) Dispatch(ctx context.Context, item MenuItem) error {
	logging.Debugf("console: menu item %d", int(item))
	switch item {
	case ItemShowAll:
		return c.showAll(ctx)
	case ItemAddClient:
		return c.addClient(ctx)
	case ItemAddPhone:
		return c.addPhone(ctx)
	case ItemUpdateClient:
		return c.updateClient(ctx)
	case ItemDeletePhone:
		return c.deletePhone(ctx)
	case ItemDeleteClient:
		return c.deleteClient(ctx)
	case ItemFindClient:
		return c.findClient(ctx)
	case ItemDemo:
		c.section("demo.title")
		return c.demo(ctx, c.out)
	case ItemExit:
		return nil
	}
	return fmt.Errorf("unknown menu item %d", int(item))
}

func (c *Controller) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Controller) section(id string) {
	_, _ = fmt.Fprintln(c.out)
	c.println(sectionStyle.Render(i18n.T(id)))
}

func (c *Controller) success(s string) {
	c.println(successStyle.Render(s))
}

func (c *Controller) fail(err error) {
	c.println(errorStyle.Render(DescribeError(err)))
}
