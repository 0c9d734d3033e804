// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/toeirei/clientbook/internal/i18n"
	"github.com/toeirei/clientbook/internal/model"
)

// Format selects how client listings are rendered.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat accepts a format name; "md" is short for markdown and an empty
// name means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

const createdLayout = "2006-01-02 15:04"

// RenderClients writes list to w. The table format uses localized headers
// and ends with a totals line; the other formats use stable column names.
func RenderClients(w io.Writer, list []model.ClientSummary, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, list)
	case FormatCSV:
		t := newClientTable(w, list, false)
		t.RenderCSV()
		return nil
	case FormatMarkdown:
		t := newClientTable(w, list, false)
		t.RenderMarkdown()
		return nil
	default:
		return renderTable(w, list)
	}
}

func renderTable(w io.Writer, list []model.ClientSummary) error {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, i18n.T("list.empty"))
		return nil
	}
	t := newClientTable(w, list, true)
	setLocalizedStyle(t)
	t.Render()
	clients, phones := model.Totals(list)
	_, _ = fmt.Fprintln(w, i18n.T("list.totals", clients, phones))
	return nil
}

// setLocalizedStyle applies the light box style but keeps header text as
// translated; the style would upper-case it otherwise.
func setLocalizedStyle(t table.Writer) {
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
}

func newClientTable(w io.Writer, list []model.ClientSummary, localized bool) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if localized {
		t.AppendHeader(table.Row{
			i18n.T("column.id"),
			i18n.T("column.first_name"),
			i18n.T("column.last_name"),
			i18n.T("column.email"),
			i18n.T("column.phones"),
			i18n.T("column.created"),
		})
	} else {
		t.AppendHeader(table.Row{"id", "first_name", "last_name", "email", "phones", "created_at"})
	}
	for _, s := range list {
		phones := s.Phones
		if !s.HasPhones() && localized {
			phones = i18n.T("list.no_phones")
		} else if !s.HasPhones() {
			phones = ""
		}
		t.AppendRow(table.Row{s.ID, s.FirstName, s.LastName, s.Email, phones, formatCreated(s)})
	}
	return t
}

func formatCreated(s model.ClientSummary) string {
	if s.CreatedAt.IsZero() {
		return ""
	}
	return s.CreatedAt.Local().Format(createdLayout)
}

func renderJSON(w io.Writer, list []model.ClientSummary) error {
	if list == nil {
		list = []model.ClientSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// RenderClient writes the detail view of a single client.
func RenderClient(w io.Writer, s model.ClientSummary, format Format) error {
	if format != FormatTable {
		return RenderClients(w, []model.ClientSummary{s}, format)
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	setLocalizedStyle(t)
	t.AppendRow(table.Row{i18n.T("column.id"), s.ID})
	t.AppendRow(table.Row{i18n.T("column.name"), s.FullName()})
	t.AppendRow(table.Row{i18n.T("column.email"), s.Email})
	if s.HasPhones() {
		for i, n := range s.Numbers {
			label := ""
			if i == 0 {
				label = i18n.T("column.phones")
			}
			t.AppendRow(table.Row{label, n})
		}
	} else {
		t.AppendRow(table.Row{i18n.T("column.phones"), i18n.T("list.no_phones")})
	}
	t.AppendRow(table.Row{i18n.T("column.phone_count"), s.PhoneCount})
	t.AppendRow(table.Row{i18n.T("column.created"), formatCreated(s)})
	t.Render()
	return nil
}
