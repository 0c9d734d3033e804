// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSQLitePath is used when a sqlite store is configured without a path.
const DefaultSQLitePath = "clientbook.db"

// ConnParams are the connection parameters for a store. DSN, when set, is
// used verbatim (sqlite pragmas are still appended) and the discrete fields
// are ignored.
type ConnParams struct {
	Engine   string
	Name     string
	User     string
	Password string
	Host     string
	Port     int
	DSN      string
	// Path is the database file for sqlite.
	Path string
}

func (p ConnParams) hostOrDefault() string {
	if h := strings.TrimSpace(p.Host); h != "" {
		return h
	}
	return "localhost"
}

// NeedsPassword reports whether the parameters describe a server database
// that has a user but no password and no DSN override.
func (p ConnParams) NeedsPassword() bool {
	e, err := ParseEngine(p.Engine)
	if err != nil || e == EngineSQLite {
		return false
	}
	return p.DSN == "" && p.User != "" && p.Password == ""
}

// DataSourceName returns the engine and the driver DSN described by p.
func (p ConnParams) DataSourceName() (Engine, string, error) {
	engine, err := ParseEngine(p.Engine)
	if err != nil {
		return "", "", err
	}
	switch engine {
	case EngineSQLite:
		src := p.DSN
		if src == "" {
			src = p.Path
		}
		if src == "" {
			src = DefaultSQLitePath
		}
		return engine, sqliteDSN(src), nil
	case EnginePostgres:
		if p.DSN != "" {
			return engine, p.DSN, nil
		}
		if p.Name == "" {
			return "", "", fmt.Errorf("%w: database name", ErrValidation)
		}
		return engine, postgresDSN(p), nil
	default:
		if p.DSN != "" {
			dsn, err := withMySQLSessionParams(p.DSN)
			if err != nil {
				return "", "", err
			}
			return engine, dsn, nil
		}
		if p.Name == "" {
			return "", "", fmt.Errorf("%w: database name", ErrValidation)
		}
		return engine, mysqlDSN(p), nil
	}
}

// Redacted returns a description of the target suitable for logs.
func (p ConnParams) Redacted() string {
	engine, err := ParseEngine(p.Engine)
	if err != nil {
		return p.Engine
	}
	if engine == EngineSQLite {
		if p.DSN != "" {
			return "sqlite " + sqliteFilePath(p.DSN)
		}
		return "sqlite " + p.Path
	}
	if p.DSN != "" {
		return string(engine) + " (custom dsn)"
	}
	return fmt.Sprintf("%s %s@%s/%s", engine, p.User, p.hostOrDefault(), p.Name)
}

// EnsureDatabase creates the database described by p if it does not exist:
// the parent directory for sqlite, CREATE DATABASE for postgres and mysql.
func EnsureDatabase(ctx context.Context, p ConnParams) error {
	engine, dsn, err := p.DataSourceName()
	if err != nil {
		return err
	}
	switch engine {
	case EnginePostgres:
		return ensurePostgresDatabase(ctx, dsn)
	case EngineMySQL:
		return ensureMySQLDatabase(ctx, dsn)
	default:
		return ensureSQLiteDir(dsn)
	}
}

// Open connects to the store described by p and makes sure the schema exists.
func Open(ctx context.Context, p ConnParams) (*BunStore, error) {
	engine, dsn, err := p.DataSourceName()
	if err != nil {
		return nil, err
	}
	dbLogf("db: opening %s", p.Redacted())
	return NewStoreFromDSN(ctx, engine, dsn)
}
