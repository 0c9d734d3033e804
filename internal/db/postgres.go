// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/uptrace/bun"
)

const (
	defaultPostgresPort = 5432
	// postgresMaintenanceDB is the database every server has; it is used to
	// create the application database when it does not exist yet.
	postgresMaintenanceDB = "postgres"
)

// postgresDSN builds a postgres:// URL from discrete connection parameters.
func postgresDSN(p ConnParams) string {
	port := p.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.hostOrDefault(), strconv.Itoa(port)),
		Path:   "/" + p.Name,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	return u.String()
}

// pgConnect is overridden in tests.
var pgConnect = pgx.ConnectConfig

// ensurePostgresDatabase connects to the maintenance database of the server
// named by dsn and creates the target database when pg_database lacks it.
func ensurePostgresDatabase(ctx context.Context, dsn string) error {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("%w: parse postgres dsn: %w", ErrConnectivity, err)
	}
	name := cfg.Database
	if name == "" || name == postgresMaintenanceDB {
		return nil
	}
	cfg.Database = postgresMaintenanceDB

	conn, err := pgConnect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: connect to %s: %w", ErrConnectivity, postgresMaintenanceDB, err)
	}
	defer func() { _ = conn.Close(ctx) }()

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return fmt.Errorf("%w: probe database %s: %w", ErrConnectivity, name, err)
	}
	if exists {
		dbLogf("db: postgres database %s already exists", name)
		return nil
	}
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("%w: create database %s: %w", ErrSchema, name, err)
	}
	dbLogf("db: created postgres database %s", name)
	return nil
}

// resyncPostgresSequences moves the serial sequences past the highest stored
// id. Rows inserted with explicit ids during a restore do not advance them.
func resyncPostgresSequences(ctx context.Context, tx bun.Tx) error {
	for _, table := range []string{"clients", "phones"} {
		q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)", table)
		if _, err := ExecRaw(ctx, tx, q); err != nil {
			return fmt.Errorf("resync %s id sequence: %w", table, err)
		}
	}
	return nil
}
