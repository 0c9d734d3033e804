// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core defines high-level facades used by the CLI. Functions operate
// via small interfaces declared in interfaces.go and return results/errors
// instead of performing UI operations.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/logging"
	"github.com/toeirei/clientbook/internal/model"
)

// RestoreOptions controls restore behavior used by `Restore`.
type RestoreOptions struct {
	// Full wipes the store before importing. Otherwise the backup is merged
	// and nothing is deleted.
	Full bool
}

// DBMaintenanceOptions configures database maintenance operations.
type DBMaintenanceOptions struct {
	// Timeout bounds the maintenance operation. Zero leaves the bound to the
	// maintainer.
	Timeout time.Duration
}

// BackupFilename is the default backup file name for the given day.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("clientbook-backup-%s.json.zst", now.Format("2006-01-02"))
}

// Backup exports the store into BackupData.
func Backup(ctx context.Context, st db.BackupStore) (*model.BackupData, error) {
	data, err := st.ExportDataForBackup(ctx)
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}
	return data, nil
}

// WriteBackup writes compressed JSON backup data to writer.
func WriteBackup(ctx context.Context, data *model.BackupData, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush backup: %w", err)
	}
	return nil
}

// ReadBackup decodes a zstd-compressed JSON backup.
func ReadBackup(ctx context.Context, r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &data, nil
}

// Restore reads a zstd-compressed JSON backup and imports it via the store.
func Restore(ctx context.Context, r io.Reader, opts RestoreOptions, st db.BackupStore) error {
	data, err := ReadBackup(ctx, r)
	if err != nil {
		return err
	}
	logging.L.Debug("restoring backup", "clients", len(data.Clients), "phones", len(data.Phones), "full", opts.Full)
	if opts.Full {
		return st.ImportDataFromBackup(ctx, data)
	}
	return st.IntegrateDataFromBackup(ctx, data)
}

// Migrate copies everything from st into the store described by target,
// replacing whatever the target held.
func Migrate(ctx context.Context, factory StoreFactory, st db.BackupStore, target db.ConnParams, rep Reporter) error {
	if rep == nil {
		rep = nopReporter{}
	}
	data, err := Backup(ctx, st)
	if err != nil {
		return err
	}
	rep.Reportf("exported %d clients and %d phones", len(data.Clients), len(data.Phones))

	targetStore, err := factory.Open(ctx, target)
	if err != nil {
		return fmt.Errorf("init target store: %w", err)
	}
	defer func() { _ = targetStore.Close() }()

	if err := targetStore.ImportDataFromBackup(ctx, data); err != nil {
		return fmt.Errorf("import to target: %w", err)
	}
	rep.Reportf("imported into %s", target.Redacted())
	return nil
}

// RunDBMaintenance delegates to the maintainer, bounded by opts.Timeout.
func RunDBMaintenance(ctx context.Context, maint DBMaintainer, p db.ConnParams, opts DBMaintenanceOptions) error {
	engine, dsn, err := p.DataSourceName()
	if err != nil {
		return err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return maint.RunDBMaintenance(ctx, engine, dsn)
}
