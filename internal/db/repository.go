// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/clientbook/internal/logging"
	"github.com/toeirei/clientbook/internal/model"
	"github.com/uptrace/bun"
)

func validateClientFields(firstName, lastName, email string) error {
	switch {
	case strings.TrimSpace(firstName) == "":
		return validationError("first name")
	case strings.TrimSpace(lastName) == "":
		return validationError("last name")
	case strings.TrimSpace(email) == "":
		return validationError("email")
	}
	return nil
}

func validatePhones(numbers []string) error {
	for _, n := range numbers {
		if strings.TrimSpace(n) == "" {
			return validationError("phone number")
		}
	}
	return nil
}

// requireClient returns ErrClientNotFound unless the client exists.
func requireClient(ctx context.Context, tx bun.IDB, clientID int64) error {
	exists, err := tx.NewSelect().Model((*ClientModel)(nil)).Where("c.id = ?", clientID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: look up client %d: %w", ErrWrite, clientID, err)
	}
	if !exists {
		return clientNotFound(clientID)
	}
	return nil
}

func insertPhone(ctx context.Context, tx bun.IDB, clientID int64, number string) error {
	pm := &PhoneModel{ClientID: clientID, Number: number}
	if _, err := tx.NewInsert().Model(pm).Exec(ctx); err != nil {
		return writeError(fmt.Errorf("insert phone %q: %w", number, err))
	}
	return nil
}

// AddClient inserts the client and then each phone in one transaction. A
// duplicate email yields ErrDuplicateEmail and nothing is stored.
func (s *BunStore) AddClient(ctx context.Context, firstName, lastName, email string, phones []string) (int64, error) {
	if err := validateClientFields(firstName, lastName, email); err != nil {
		return 0, err
	}
	if err := validatePhones(phones); err != nil {
		return 0, err
	}
	var id int64
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		cm := &ClientModel{FirstName: firstName, LastName: lastName, Email: email}
		if _, err := tx.NewInsert().Model(cm).Exec(ctx); err != nil {
			return writeError(fmt.Errorf("insert client: %w", err))
		}
		for _, n := range phones {
			if err := insertPhone(ctx, tx, cm.ID, n); err != nil {
				return err
			}
		}
		id = cm.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	logging.L.Debug("client added", "id", id, "email", email, "phones", len(phones))
	return id, nil
}

// AddPhone checks that the client exists and inserts the number in the same
// transaction.
func (s *BunStore) AddPhone(ctx context.Context, clientID int64, number string) (bool, error) {
	if err := validatePhones([]string{number}); err != nil {
		return false, err
	}
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireClient(ctx, tx, clientID); err != nil {
			return err
		}
		return insertPhone(ctx, tx, clientID, number)
	})
	if err != nil {
		return false, err
	}
	logging.L.Debug("phone added", "client", clientID, "number", number)
	return true, nil
}

// UpdateClient applies patch. Unset fields keep their value; a set Phones
// field, even an empty one, replaces every phone of the client. Clearing a
// name or the email is rejected with ErrValidation.
func (s *BunStore) UpdateClient(ctx context.Context, clientID int64, patch model.ClientPatch) error {
	type column struct {
		name  string
		value model.Optional[string]
	}
	cols := []column{
		{"first_name", patch.FirstName},
		{"last_name", patch.LastName},
		{"email", patch.Email},
	}
	for _, c := range cols {
		if v, ok := c.value.Get(); ok && strings.TrimSpace(v) == "" {
			return validationError(strings.ReplaceAll(c.name, "_", " "))
		}
	}
	phones, replacePhones := patch.Phones.Get()
	if err := validatePhones(phones); err != nil {
		return err
	}

	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireClient(ctx, tx, clientID); err != nil {
			return err
		}
		q := tx.NewUpdate().Table("clients").Where("id = ?", clientID)
		changed := false
		for _, c := range cols {
			if v, ok := c.value.Get(); ok {
				q = q.Set("? = ?", bun.Ident(c.name), v)
				changed = true
			}
		}
		if changed {
			if _, err := q.Exec(ctx); err != nil {
				return writeError(fmt.Errorf("update client %d: %w", clientID, err))
			}
		}
		if !replacePhones {
			return nil
		}
		if _, err := tx.NewDelete().Table("phones").Where("client_id = ?", clientID).Exec(ctx); err != nil {
			return writeError(fmt.Errorf("clear phones of client %d: %w", clientID, err))
		}
		for _, n := range phones {
			if err := insertPhone(ctx, tx, clientID, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logging.L.Debug("client updated", "id", clientID, "phones_replaced", replacePhones)
	return nil
}

// DeletePhone removes one phone row matching both the client and the exact
// number. When the client has the number more than once the oldest row goes.
func (s *BunStore) DeletePhone(ctx context.Context, clientID int64, number string) (bool, error) {
	deleted := false
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireClient(ctx, tx, clientID); err != nil {
			return err
		}
		var phoneID int64
		err := tx.NewSelect().Model((*PhoneModel)(nil)).Column("p.id").
			Where("p.client_id = ?", clientID).
			Where("p.phone_number = ?", number).
			OrderExpr("p.created_at ASC, p.id ASC").
			Limit(1).
			Scan(ctx, &phoneID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return writeError(fmt.Errorf("look up phone: %w", err))
		}
		res, err := tx.NewDelete().Table("phones").Where("id = ?", phoneID).Exec(ctx)
		if err != nil {
			return writeError(fmt.Errorf("delete phone %d: %w", phoneID, err))
		}
		n, _ := res.RowsAffected()
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	logging.L.Debug("phone delete", "client", clientID, "number", number, "deleted", deleted)
	return deleted, nil
}

// DeleteClient removes the client; its phones go with it through the
// ON DELETE CASCADE reference.
func (s *BunStore) DeleteClient(ctx context.Context, clientID int64) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireClient(ctx, tx, clientID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Table("clients").Where("id = ?", clientID).Exec(ctx); err != nil {
			return writeError(fmt.Errorf("delete client %d: %w", clientID, err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	logging.L.Debug("client deleted", "id", clientID)
	return nil
}

// ListClients returns every client with its aggregated phones, ordered by id.
func (s *BunStore) ListClients(ctx context.Context) ([]model.ClientSummary, error) {
	return querySummaries(ctx, s.bun, s.engine, nil)
}

// GetClient returns the summary of a single client or ErrClientNotFound.
func (s *BunStore) GetClient(ctx context.Context, clientID int64) (*model.ClientSummary, error) {
	q := summaryQuery(s.bun, s.engine).Where("c.id = ?", clientID)
	var rows []summaryRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("get client %d: %w", clientID, err)
	}
	if len(rows) == 0 {
		return nil, clientNotFound(clientID)
	}
	out := []model.ClientSummary{summaryRowToModel(rows[0])}
	if err := attachNumbers(ctx, s.bun, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// FindClients runs a search through the store's own searcher.
func (s *BunStore) FindClients(ctx context.Context, criteria model.SearchCriteria) ([]model.ClientSummary, error) {
	return NewBunClientSearcher(s.bun, s.engine).FindClients(ctx, criteria)
}
