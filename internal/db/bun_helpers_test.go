// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// newMockBun returns a postgres-flavoured *bun.DB over sqlmock.
func newMockBun(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	bdb := bun.NewDB(dbMock, pgdialect.New())
	t.Cleanup(func() { _ = bdb.Close() })
	return bdb, mock
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	bdb, mock := newMockBun(t)
	boom := errors.New("phone insert failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO phones").WillReturnError(boom)
	mock.ExpectRollback()

	err := WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		if _, err := ExecRaw(ctx, tx, "INSERT INTO clients (email) VALUES (?)", "a@example.com"); err != nil {
			return err
		}
		if _, err := ExecRaw(ctx, tx, "INSERT INTO phones (client_id, phone_number) VALUES (?, ?)", 1, "+1"); err != nil {
			return writeError(err)
		}
		return nil
	})
	if !errors.Is(err, boom) || !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite wrapping the insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	bdb, mock := newMockBun(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM phones").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		_, err := ExecRaw(ctx, tx, "DELETE FROM phones WHERE client_id = ?", 1)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	bdb, mock := newMockBun(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
			panic("boom")
		})
	}()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTx_BeginAndCommitFailures(t *testing.T) {
	bdb, mock := newMockBun(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))
	if err := WithTx(context.Background(), bdb, func(context.Context, bun.Tx) error { return nil }); !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite on begin failure, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit lost"))
	if err := WithTx(context.Background(), bdb, func(context.Context, bun.Tx) error { return nil }); !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite on commit failure, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQueryRawInto_ScansScalar(t *testing.T) {
	bdb, mock := newMockBun(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	var n int
	if err := QueryRawInto(context.Background(), bdb, &n, "SELECT COUNT(*) FROM clients"); err != nil {
		t.Fatalf("QueryRawInto failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
}
