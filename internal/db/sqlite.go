// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteLowerFunc is a Unicode-aware replacement for LOWER, so that search
// folds non-ASCII names such as "Иван" the same way postgres and mysql do.
const sqliteLowerFunc = "clientbook_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case nil:
			return nil, nil
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return strings.ToLower(fmt.Sprint(v)), nil
		}
	})
}

// sqliteDSN turns a file path or an existing DSN into one that enables
// foreign key enforcement on every pooled connection. Without it ON DELETE
// CASCADE and the phone to client reference are silently ignored.
func sqliteDSN(pathOrDSN string) string {
	dsn := strings.TrimSpace(pathOrDSN)
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	for _, pragma := range []string{"foreign_keys(1)", "busy_timeout(5000)"} {
		name := pragma[:strings.Index(pragma, "(")]
		if strings.Contains(dsn, name) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=" + pragma
	}
	return dsn
}

// sqliteIsMemory reports whether dsn names an in-memory database.
func sqliteIsMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// sqliteFilePath extracts the file path from a sqlite DSN.
func sqliteFilePath(dsn string) string {
	p := strings.TrimPrefix(strings.TrimSpace(dsn), "file:")
	if i := strings.Index(p, "?"); i >= 0 {
		p = p[:i]
	}
	return p
}

// ensureSQLiteDir creates the directory that will hold the database file.
// SQLite creates the file itself but not its parent directories.
func ensureSQLiteDir(dsn string) error {
	if sqliteIsMemory(dsn) {
		return nil
	}
	dir := filepath.Dir(sqliteFilePath(dsn))
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}
