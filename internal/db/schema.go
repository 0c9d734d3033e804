// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed schema/*.sql
var embeddedSchema embed.FS

// Index describes one secondary index created by EnsureSchema.
type Index struct {
	Name    string
	Table   string
	Columns []string
}

// Indexes are created after the tables, in this order.
var Indexes = []Index{
	{Name: "idx_clients_name", Table: "clients", Columns: []string{"first_name", "last_name"}},
	{Name: "idx_clients_email", Table: "clients", Columns: []string{"email"}},
	{Name: "idx_phones_client", Table: "phones", Columns: []string{"client_id"}},
	{Name: "idx_phones_number", Table: "phones", Columns: []string{"phone_number"}},
}

// EnsureSchema creates the clients and phones tables and their indexes when
// they are missing. Every statement runs on its own, so a partially applied
// schema is completed by the next call. Failures are wrapped in ErrSchema.
func EnsureSchema(ctx context.Context, bdb *bun.DB, engine Engine) error {
	stmts, err := tableStatements(engine)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := ExecRaw(ctx, bdb, stmt); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSchema, firstLine(stmt), err)
		}
	}
	for _, idx := range Indexes {
		if err := ensureIndex(ctx, bdb, engine, idx); err != nil {
			return fmt.Errorf("%w: index %s: %w", ErrSchema, idx.Name, err)
		}
	}
	return nil
}

// tableStatements returns the embedded DDL for engine split into single
// statements. MySQL rejects multi-statement Exec without multiStatements=true.
func tableStatements(engine Engine) ([]string, error) {
	data, err := embeddedSchema.ReadFile("schema/" + string(engine) + ".sql")
	if err != nil {
		return nil, fmt.Errorf("%w: no schema for %s: %w", ErrSchema, engine, err)
	}
	return splitStatements(string(data)), nil
}

// splitStatements drops "--" comment lines and splits on ";".
func splitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ensureIndex(ctx context.Context, bdb *bun.DB, engine Engine, idx Index) error {
	if engine != EngineMySQL {
		_, err := ExecRaw(ctx, bdb, createIndexSQL(engine, idx))
		return err
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS.
	var n int
	if err := QueryRawInto(ctx, bdb, &n,
		"SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?",
		idx.Table, idx.Name); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := ExecRaw(ctx, bdb, createIndexSQL(engine, idx))
	return err
}

func createIndexSQL(engine Engine, idx Index) string {
	cols := strings.Join(idx.Columns, ", ")
	if engine == EngineMySQL {
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.Name, idx.Table, cols)
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.Name, idx.Table, cols)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
