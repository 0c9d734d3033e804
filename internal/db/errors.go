// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors returned by the store. They are always wrapped together with
// the underlying cause, so callers should test with errors.Is.
var (
	// ErrConnectivity means the database could not be opened, reached or
	// authenticated against.
	ErrConnectivity = errors.New("database unreachable")
	// ErrClientNotFound means the referenced client id does not exist.
	ErrClientNotFound = errors.New("client not found")
	// ErrDuplicateEmail means a write would store an email that another
	// client already owns.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrReferentialViolation means a phone insert referenced a client that
	// no longer exists.
	ErrReferentialViolation = errors.New("referenced client does not exist")
	// ErrWrite covers every other failed write. The transaction was rolled back.
	ErrWrite = errors.New("write failed")
	// ErrSchema means the tables or indexes could not be created.
	ErrSchema = errors.New("schema setup failed")
	// ErrValidation means a required value was empty. Nothing was executed.
	ErrValidation = errors.New("invalid input")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDupEntry        = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// MapDBError inspects low-level driver errors and maps constraint violations
// to ErrDuplicateEmail or ErrReferentialViolation, keeping the driver error
// in the chain. Typed driver errors are checked first; a string match covers
// drivers or wrappers that hide the concrete type. Errors that match nothing
// are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrReferentialViolation) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrReferentialViolation, err)
		}
		return err
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDupEntry:
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return fmt.Errorf("%w: %w", ErrReferentialViolation, err)
		}
		return err
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", ErrReferentialViolation, err)
		}
		return err
	}

	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, pgUniqueViolation) || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
	}
	if strings.Contains(le, "foreign key") || strings.Contains(le, pgForeignKeyViolation) || strings.Contains(le, "1452") {
		return fmt.Errorf("%w: %w", ErrReferentialViolation, err)
	}
	return err
}

// writeError classifies a failed write. Constraint violations keep their
// specific sentinel, sentinel errors already produced by this package pass
// through, and everything else becomes ErrWrite.
func writeError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrClientNotFound, ErrValidation, ErrWrite, ErrDuplicateEmail, ErrReferentialViolation} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	mapped := MapDBError(err)
	if mapped != err {
		return mapped
	}
	return fmt.Errorf("%w: %w", ErrWrite, err)
}

func clientNotFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrClientNotFound, id)
}

func validationError(field string) error {
	return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
}
