// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Engine names a supported database backend.
type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgres"
	EngineMySQL    Engine = "mysql"
)

// Engines lists the supported backends in the order they are documented.
var Engines = []Engine{EngineSQLite, EnginePostgres, EngineMySQL}

// ParseEngine accepts an engine name case-insensitively. "postgresql" and
// "pgx" are accepted as aliases for postgres, "sqlite3" for sqlite.
func ParseEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return EngineSQLite, nil
	case "postgres", "postgresql", "pgx":
		return EnginePostgres, nil
	case "mysql", "mariadb":
		return EngineMySQL, nil
	}
	return "", fmt.Errorf("unsupported database type: %q", name)
}

func (e Engine) String() string { return string(e) }

// DriverName returns the database/sql driver registered for the engine.
// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
func (e Engine) DriverName() string {
	if e == EnginePostgres {
		return "pgx"
	}
	return string(e)
}

// phoneAggExpr joins a client's phone numbers, oldest first, with
// model.PhoneSeparator. Every engine spells string aggregation differently.
func (e Engine) phoneAggExpr() string {
	switch e {
	case EnginePostgres:
		return "string_agg(p.phone_number, ', ' ORDER BY p.created_at, p.id)"
	case EngineMySQL:
		return "GROUP_CONCAT(p.phone_number ORDER BY p.created_at, p.id SEPARATOR ', ')"
	default:
		return "group_concat(p.phone_number, ', ' ORDER BY p.created_at, p.id)"
	}
}

// lowerExpr folds expr to lower case. SQLite's built-in LOWER only folds
// ASCII, so sqlite stores use the Unicode-aware function registered in
// sqlite.go.
func (e Engine) lowerExpr(expr string) string {
	if e == EngineSQLite {
		return sqliteLowerFunc + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and engine.
// Centralizing construction makes it easier to apply consistent options
// and to test Bun initialization in one place.
func createBunDB(sqlDB *sql.DB, engine Engine) *bun.DB {
	switch engine {
	case EnginePostgres:
		return bun.NewDB(sqlDB, pgdialect.New())
	case EngineMySQL:
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}
