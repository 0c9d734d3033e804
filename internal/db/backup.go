// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toeirei/clientbook/internal/model"
	"github.com/uptrace/bun"
)

// ExportDataForBackup reads both tables inside one transaction so the
// snapshot is consistent.
func (s *BunStore) ExportDataForBackup(ctx context.Context) (*model.BackupData, error) {
	var backup *model.BackupData
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: model.BackupSchemaVersion}

		var clients []ClientModel
		if err := tx.NewSelect().Model(&clients).OrderExpr("c.id ASC").Scan(ctx); err != nil {
			return fmt.Errorf("export clients: %w", err)
		}
		for _, c := range clients {
			backup.Clients = append(backup.Clients, clientModelToModel(c))
		}

		var phones []PhoneModel
		if err := tx.NewSelect().Model(&phones).OrderExpr("p.id ASC").Scan(ctx); err != nil {
			return fmt.Errorf("export phones: %w", err)
		}
		for _, p := range phones {
			backup.Phones = append(backup.Phones, phoneModelToModel(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}

// ImportDataFromBackup performs a full wipe-and-replace in one transaction.
// Ids are kept, so phones still point at their clients.
func (s *BunStore) ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error {
	if err := checkBackupVersion(backup); err != nil {
		return err
	}
	return WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		// Phones first; the cascade would remove them anyway.
		for _, t := range []string{"phones", "clients"} {
			if _, err := tx.NewDelete().Table(t).Where("1 = 1").Exec(ctx); err != nil {
				return writeError(fmt.Errorf("wipe %s: %w", t, err))
			}
		}
		for _, c := range backup.Clients {
			cm := &ClientModel{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, CreatedAt: c.CreatedAt}
			if _, err := tx.NewInsert().Model(cm).Exec(ctx); err != nil {
				return writeError(fmt.Errorf("restore client %d: %w", c.ID, err))
			}
		}
		for _, p := range backup.Phones {
			pm := &PhoneModel{ID: p.ID, ClientID: p.ClientID, Number: p.Number, CreatedAt: p.CreatedAt}
			if _, err := tx.NewInsert().Model(pm).Exec(ctx); err != nil {
				return writeError(fmt.Errorf("restore phone %d: %w", p.ID, err))
			}
		}
		if s.engine == EnginePostgres {
			if err := resyncPostgresSequences(ctx, tx); err != nil {
				return writeError(err)
			}
		}
		dbLogf("db: imported %d clients and %d phones", len(backup.Clients), len(backup.Phones))
		return nil
	})
}

// IntegrateDataFromBackup merges a backup without deleting anything. Clients
// are matched by email; unknown clients get fresh ids. A phone is added only
// when its client does not already have that exact number.
func (s *BunStore) IntegrateDataFromBackup(ctx context.Context, backup *model.BackupData) error {
	if err := checkBackupVersion(backup); err != nil {
		return err
	}
	return WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		ids := make(map[int64]int64, len(backup.Clients))
		added := 0
		for _, c := range backup.Clients {
			var existing ClientModel
			err := tx.NewSelect().Model(&existing).Where("c.email = ?", c.Email).Limit(1).Scan(ctx)
			if err == nil {
				ids[c.ID] = existing.ID
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return writeError(fmt.Errorf("integrate client %q: %w", c.Email, err))
			}
			cm := &ClientModel{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, CreatedAt: c.CreatedAt}
			if _, err := tx.NewInsert().Model(cm).Exec(ctx); err != nil {
				return writeError(fmt.Errorf("integrate client %q: %w", c.Email, err))
			}
			ids[c.ID] = cm.ID
			added++
		}

		phonesAdded := 0
		for _, p := range backup.Phones {
			clientID, ok := ids[p.ClientID]
			if !ok {
				dbLogf("db: skipping phone %q of unknown backup client %d", p.Number, p.ClientID)
				continue
			}
			exists, err := tx.NewSelect().Model((*PhoneModel)(nil)).
				Where("p.client_id = ?", clientID).
				Where("p.phone_number = ?", p.Number).
				Exists(ctx)
			if err != nil {
				return writeError(fmt.Errorf("integrate phone %q: %w", p.Number, err))
			}
			if exists {
				continue
			}
			pm := &PhoneModel{ClientID: clientID, Number: p.Number, CreatedAt: p.CreatedAt}
			if _, err := tx.NewInsert().Model(pm).Exec(ctx); err != nil {
				return writeError(fmt.Errorf("integrate phone %q: %w", p.Number, err))
			}
			phonesAdded++
		}
		dbLogf("db: integrated %d new clients and %d new phones", added, phonesAdded)
		return nil
	})
}

func checkBackupVersion(backup *model.BackupData) error {
	if backup == nil {
		return fmt.Errorf("%w: no backup data", ErrValidation)
	}
	if backup.SchemaVersion > model.BackupSchemaVersion {
		return fmt.Errorf("%w: backup schema version %d is newer than supported version %d", ErrValidation, backup.SchemaVersion, model.BackupSchemaVersion)
	}
	return nil
}
