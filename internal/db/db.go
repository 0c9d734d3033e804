// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Pool tuning environment variables.
const (
	EnvMaxOpenConns       = "CLIENTBOOK_DB_MAX_OPEN_CONNS"
	EnvMaxIdleConns       = "CLIENTBOOK_DB_MAX_IDLE_CONNS"
	EnvConnMaxLifetimeSec = "CLIENTBOOK_DB_CONN_MAX_LIFETIME_SECONDS"
	EnvConnMaxIdleSec     = "CLIENTBOOK_DB_CONN_MAX_IDLE_SECONDS"
)

// NewStoreFromDSN opens a sql.DB for the given DSN, ensures the schema, and
// returns a store backed by a long-lived *bun.DB. Sqlite DSNs are expected to
// come from ConnParams.DataSourceName so that foreign keys are enabled.
func NewStoreFromDSN(ctx context.Context, engine Engine, dsn string) (*BunStore, error) {
	if _, err := ParseEngine(string(engine)); err != nil {
		return nil, err
	}
	start := time.Now()
	sqlDB, err := sqlOpenFunc(engine.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrConnectivity, engine, err)
	}
	maxOpen, connIdle, connMax := configurePool(sqlDB, engine)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectivity, engine, err)
	}
	dbLogf("db: opened %s driver in %s (conn max open=%d, idle=%s, maxLifetime=%s)", engine.DriverName(), time.Since(start), maxOpen, connIdle, connMax)

	bdb := createBunDB(sqlDB, engine)
	if engine == EngineSQLite {
		// The DSN pragma covers new connections; this covers DSNs that
		// bypassed sqliteDSN.
		if _, err := bdb.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = bdb.Close()
			return nil, fmt.Errorf("%w: enable foreign keys: %w", ErrConnectivity, err)
		}
	}

	schemaStart := time.Now()
	if err := EnsureSchema(ctx, bdb, engine); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	dbLogf("db: schema for %s ensured in %s", engine, time.Since(schemaStart))
	return &BunStore{bun: bdb, engine: engine}, nil
}

// configurePool applies pool limits. Values can be overridden via
// environment variables for CI or production tuning. SQLite always gets a
// single connection: in-memory databases are per connection and file
// databases allow one writer anyway.
func configurePool(sqlDB *sql.DB, engine Engine) (maxOpen int, connIdle, connMax time.Duration) {
	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 5 * time.Minute
		defaultConnMaxIdleTime = 60 * time.Second
	)

	maxOpen = envInt(EnvMaxOpenConns, defaultMaxOpenConns)
	maxIdle := envInt(EnvMaxIdleConns, defaultMaxIdleConns)
	if engine == EngineSQLite {
		maxOpen = 1
		maxIdle = 1
	}
	connMax = time.Duration(envInt(EnvConnMaxLifetimeSec, int(defaultConnMaxLifetime/time.Second))) * time.Second
	connIdle = time.Duration(envInt(EnvConnMaxIdleSec, int(defaultConnMaxIdleTime/time.Second))) * time.Second
	if engine == EngineSQLite {
		// Closing the only connection drops an in-memory database.
		connMax = 0
		connIdle = 0
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	sqlDB.SetConnMaxIdleTime(connIdle)
	return maxOpen, connIdle, connMax
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		dbLogf("db: ignoring invalid %s=%q", name, v)
	}
	return def
}

// BunStore is the bun-backed Store. One type serves all engines; the
// engine-specific SQL lives in sqlite.go, postgres.go and mysql.go.
type BunStore struct {
	bun    *bun.DB
	engine Engine
}

// BunDB returns the underlying Bun DB.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Engine returns the backend the store talks to.
func (s *BunStore) Engine() Engine { return s.engine }

// Close releases the connection pool.
func (s *BunStore) Close() error {
	if s == nil || s.bun == nil {
		return nil
	}
	return s.bun.Close()
}
