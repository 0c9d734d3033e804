// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeirei/clientbook/internal/model"
	"github.com/uptrace/bun"
)

// Column is a searchable client attribute. Only the constants below are
// valid; the SQL they map to is fixed, values are always bound.
type Column string

const (
	ColumnFirstName Column = "first_name"
	ColumnLastName  Column = "last_name"
	ColumnEmail     Column = "email"
	ColumnPhone     Column = "phone_number"
)

// Op is a filter operator.
type Op string

// OpContains is a case-insensitive substring match.
const OpContains Op = "contains"

// Filter is one search condition. Filters in a list are ANDed.
type Filter struct {
	Column Column
	Op     Op
	Value  string
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %q", f.Column, f.Op, f.Value)
}

// FiltersFromCriteria converts search criteria into filters. Unset and blank
// criteria contribute nothing; values are trimmed.
func FiltersFromCriteria(c model.SearchCriteria) []Filter {
	var out []Filter
	add := func(col Column, o model.Optional[string]) {
		v, ok := o.Get()
		if !ok {
			return
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		out = append(out, Filter{Column: col, Op: OpContains, Value: v})
	}
	add(ColumnFirstName, c.FirstName)
	add(ColumnLastName, c.LastName)
	add(ColumnEmail, c.Email)
	add(ColumnPhone, c.Phone)
	return out
}

// likeEscape is the escape character declared in every LIKE clause.
const likeEscape = "!"

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

// containsPattern returns the LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}

// summaryQuery selects clients joined with their phones, one row per client,
// ordered by id.
func summaryQuery(idb bun.IDB, engine Engine) *bun.SelectQuery {
	return idb.NewSelect().
		TableExpr("clients AS c").
		ColumnExpr("c.id, c.first_name, c.last_name, c.email, c.created_at").
		ColumnExpr(engine.phoneAggExpr() + " AS phones").
		ColumnExpr("COUNT(p.id) AS phone_count").
		Join("LEFT JOIN phones AS p ON p.client_id = c.id").
		GroupExpr("c.id, c.first_name, c.last_name, c.email, c.created_at").
		OrderExpr("c.id ASC")
}

// applyFilter adds f to q. The phone filter is an EXISTS subquery so the
// aggregated phone list of a matching client still shows every number.
func applyFilter(q *bun.SelectQuery, engine Engine, f Filter) (*bun.SelectQuery, error) {
	if f.Op != OpContains && f.Op != "" {
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrValidation, f.Op)
	}
	pattern := containsPattern(f.Value)
	switch f.Column {
	case ColumnFirstName, ColumnLastName, ColumnEmail:
		cond := engine.lowerExpr("c."+string(f.Column)) + " LIKE " + engine.lowerExpr("?") + " ESCAPE '" + likeEscape + "'"
		return q.Where(cond, pattern), nil
	case ColumnPhone:
		cond := "EXISTS (SELECT 1 FROM phones AS pf WHERE pf.client_id = c.id AND " +
			engine.lowerExpr("pf.phone_number") + " LIKE " + engine.lowerExpr("?") + " ESCAPE '" + likeEscape + "')"
		return q.Where(cond, pattern), nil
	}
	return nil, fmt.Errorf("%w: unsupported search column %q", ErrValidation, f.Column)
}

// querySummaries runs the summary query with filters applied.
func querySummaries(ctx context.Context, idb bun.IDB, engine Engine, filters []Filter) ([]model.ClientSummary, error) {
	q := summaryQuery(idb, engine)
	for _, f := range filters {
		var err error
		if q, err = applyFilter(q, engine, f); err != nil {
			return nil, err
		}
	}
	var rows []summaryRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	out := make([]model.ClientSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryRowToModel(r))
	}
	if err := attachNumbers(ctx, idb, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachNumbers fills Numbers from the phones table, oldest first. The
// aggregated Phones string is for display only: a number may itself
// contain the separator.
func attachNumbers(ctx context.Context, idb bun.IDB, summaries []model.ClientSummary) error {
	index := make(map[int64]int, len(summaries))
	ids := make([]int64, 0, len(summaries))
	for i, s := range summaries {
		if s.HasPhones() {
			index[s.ID] = i
			ids = append(ids, s.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var phones []PhoneModel
	err := idb.NewSelect().Model(&phones).
		Where("p.client_id IN (?)", bun.In(ids)).
		OrderExpr("p.client_id ASC, p.created_at ASC, p.id ASC").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("query phone numbers: %w", err)
	}
	for _, p := range phones {
		if i, ok := index[p.ClientID]; ok {
			summaries[i].Numbers = append(summaries[i].Numbers, p.Number)
		}
	}
	return nil
}
