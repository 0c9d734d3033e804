// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// debug_export seeds a store with sample clients and prints the backup
// payload as indented JSON. It is handy for checking the export format by
// hand or for producing fixtures.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/logging"
)

type sample struct {
	first, last, email string
	phones             []string
}

var samples = []sample{
	{"Ivan", "Petrov", "ivan.petrov@example.com", []string{"+7-900-123-45-67", "+7-900-765-43-21"}},
	{"Anna", "Smirnova", "anna.smirnova@example.com", nil},
	{"Petr", "Sidorov", "petr.sidorov@example.com", []string{"+7-901-000-00-01"}},
}

func main() {
	dsn := "file:debug_export?mode=memory&cache=shared"
	if len(os.Args) > 1 {
		dsn = os.Args[1]
	}
	if err := run(context.Background(), dsn, os.Stdout); err != nil {
		logging.Errorf("debug export: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn string, out io.Writer) error {
	store, err := db.Open(ctx, db.ConnParams{Engine: string(db.EngineSQLite), DSN: dsn})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, s := range samples {
		id, err := store.AddClient(ctx, s.first, s.last, s.email, s.phones)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.email, err)
		}
		logging.Debugf("seeded client %d (%s)", id, s.email)
	}

	data, err := store.ExportDataForBackup(ctx)
	if err != nil {
		return err
	}
	logging.Infof("exported %d clients and %d phones", len(data.Clients), len(data.Phones))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
