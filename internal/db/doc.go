// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains the data-access layer for the client book.
//
// A Store is opened from ConnParams with Open (or from a raw DSN with
// NewStoreFromDSN). Opening pings the server and runs EnsureSchema, so a
// returned store is always ready to use. The caller owns the handle and
// passes it to whatever needs it; there is no package-level store.
//
// The store is split into small interfaces so callers can depend on what
// they use:
//   - ClientRepository: add, update and delete clients and phones, list and
//     fetch summaries.
//   - ClientSearcher: filtered search (see FiltersFromCriteria). Tests can
//     use FakeClientSearcher.
//   - BackupStore: export, full import and non-destructive integration.
//
// Errors
//   - Every failure wraps one of the sentinels in errors.go (ErrConnectivity,
//     ErrClientNotFound, ErrDuplicateEmail, ErrReferentialViolation, ErrWrite,
//     ErrSchema, ErrValidation) together with the driver error. Use errors.Is.
//   - Multi-statement writes run inside WithTx and are rolled back before the
//     error is returned.
//
// Engines
//   - sqlite (modernc.org/sqlite), postgres (pgx stdlib driver) and mysql
//     (go-sql-driver). Queries go through uptrace/bun with the matching
//     dialect; the few engine-specific statements live in sqlite.go,
//     postgres.go and mysql.go.
//
// Testing notes
//   - Tests open an in-memory sqlite store per test with
//     "file:<test name>?mode=memory&cache=shared".
//   - Rollback and error-mapping paths use go-sqlmock through sqlOpenFunc.
//   - Postgres and MySQL tests run against POSTGRES_DSN / MYSQL_DSN or a
//     testcontainers-go container and skip when neither is available.
package db
