// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// withMockOpen overrides sqlOpenFunc to return a sqlmock DB regardless of args.
func withMockOpen(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	orig := sqlOpenFunc
	sqlOpenFunc = func(driverName, dsn string) (*sql.DB, error) { return dbMock, nil }
	t.Cleanup(func() {
		sqlOpenFunc = orig
		_ = dbMock.Close()
	})
	return mock
}

func TestRunDBMaintenance_Sqlite_WithMock_Success(t *testing.T) {
	mock := withMockOpen(t)

	// Expect PRAGMA optimize; VACUUM; wal checkpoint; integrity_check
	mock.ExpectExec("PRAGMA optimize").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PRAGMA wal_checkpoint\\(").WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"integrity_check"}).AddRow("ok")
	mock.ExpectQuery("PRAGMA integrity_check").WillReturnRows(rows)

	if err := RunDBMaintenance(context.Background(), EngineSQLite, "whatever"); err != nil {
		t.Fatalf("expected RunDBMaintenance success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunDBMaintenance_Sqlite_OptimizeFailureIgnored(t *testing.T) {
	mock := withMockOpen(t)

	mock.ExpectExec("PRAGMA optimize").WillReturnError(errors.New("optimize fail"))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PRAGMA wal_checkpoint\\(").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("PRAGMA integrity_check").WillReturnRows(sqlmock.NewRows([]string{"integrity_check"}).AddRow("ok"))

	if err := RunDBMaintenance(context.Background(), EngineSQLite, "whatever"); err != nil {
		t.Fatalf("optimize failure should be non-fatal, got %v", err)
	}
}

func TestRunDBMaintenance_Sqlite_IntegrityFailure(t *testing.T) {
	mock := withMockOpen(t)

	mock.ExpectExec("PRAGMA optimize").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PRAGMA wal_checkpoint\\(").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("PRAGMA integrity_check").WillReturnRows(sqlmock.NewRows([]string{"integrity_check"}).AddRow("*** in database main ***"))

	if err := RunDBMaintenance(context.Background(), EngineSQLite, "whatever"); err == nil {
		t.Fatalf("expected error when integrity_check is not ok")
	}
}

func TestRunDBMaintenance_Postgres_WithMock(t *testing.T) {
	mock := withMockOpen(t)
	mock.ExpectExec("VACUUM ANALYZE").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := RunDBMaintenance(context.Background(), EnginePostgres, "dsn"); err != nil {
		t.Fatalf("expected postgres maintenance to succeed, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunDBMaintenance_Postgres_WithMock_Failure(t *testing.T) {
	mock := withMockOpen(t)
	mock.ExpectExec("VACUUM ANALYZE").WillReturnError(errors.New("vacuum fail"))
	if err := RunDBMaintenance(context.Background(), EnginePostgres, "dsn"); err == nil {
		t.Fatalf("expected error when VACUUM ANALYZE fails")
	}
}

func TestRunDBMaintenance_MySQL_WithMock(t *testing.T) {
	mock := withMockOpen(t)
	mock.ExpectExec("OPTIMIZE TABLE `clients`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("OPTIMIZE TABLE `phones`").WillReturnError(errors.New("optimize fail"))

	if err := RunDBMaintenance(context.Background(), EngineMySQL, "dsn"); err == nil {
		t.Fatalf("expected error when OPTIMIZE TABLE fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunDBMaintenance_UnsupportedEngine(t *testing.T) {
	_ = withMockOpen(t)
	if err := RunDBMaintenance(context.Background(), Engine("oracle"), "dsn"); err == nil {
		t.Fatalf("expected error for unsupported engine")
	}
}

func TestRunDBMaintenance_SqliteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maint.db")
	p := ConnParams{Engine: "sqlite", Path: path}
	s, err := Open(context.Background(), p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", "+1")
	_ = s.Close()

	_, dsn, _ := p.DataSourceName()
	if err := RunDBMaintenance(context.Background(), EngineSQLite, dsn); err != nil {
		t.Fatalf("maintenance on real sqlite file failed: %v", err)
	}
}
