// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"
)

// maintenanceTimeout bounds a maintenance run when the caller's context has
// no deadline of its own.
const maintenanceTimeout = 2 * time.Minute

// RunDBMaintenance performs engine-specific maintenance tasks for the given
// database DSN. For SQLite this will run PRAGMA optimize, VACUUM, a WAL
// checkpoint and an integrity check. For Postgres it runs VACUUM ANALYZE.
// For MySQL it runs OPTIMIZE TABLE on the clients and phones tables.
func RunDBMaintenance(ctx context.Context, engine Engine, dsn string) error {
	sqlDB, err := sqlOpenFunc(engine.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("%w: open database for maintenance: %w", ErrConnectivity, err)
	}
	defer func() { _ = sqlDB.Close() }()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maintenanceTimeout)
		defer cancel()
	}

	switch engine {
	case EngineSQLite:
		// PRAGMA optimize may not be supported or useful in some environments
		// (e.g., in-memory filesystems); treat optimize errors as non-fatal.
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			dbLogf("db: sqlite optimize failed (ignored): %v", err)
		}
		if _, err := sqlDB.ExecContext(ctx, "VACUUM;"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		// WAL checkpoint; ignore errors if not supported.
		_, _ = sqlDB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")
		var res string
		if err := sqlDB.QueryRowContext(ctx, "PRAGMA integrity_check;").Scan(&res); err != nil {
			return fmt.Errorf("sqlite integrity_check failed: %w", err)
		}
		if res != "ok" {
			return fmt.Errorf("sqlite integrity_check failed: %s", res)
		}
	case EnginePostgres:
		if _, err := sqlDB.ExecContext(ctx, "VACUUM ANALYZE;"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
	case EngineMySQL:
		var lastErr error
		for _, table := range []string{"clients", "phones"} {
			if _, err := sqlDB.ExecContext(ctx, "OPTIMIZE TABLE "+mysqlIdent(table)); err != nil {
				// Non-fatal per-table: remember last error and continue
				dbLogf("db: mysql optimize table %s failed: %v", table, err)
				lastErr = err
			}
		}
		if lastErr != nil {
			return fmt.Errorf("mysql optimize encountered errors: %w", lastErr)
		}
	default:
		return fmt.Errorf("unsupported db type for maintenance: %s", engine)
	}
	dbLogf("db: %s maintenance finished", engine)
	return nil
}
