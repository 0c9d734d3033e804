// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"time"

	"github.com/toeirei/clientbook/internal/model"
	"github.com/uptrace/bun"
)

// ClientModel maps the clients table.
type ClientModel struct {
	bun.BaseModel `bun:"table:clients,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	FirstName     string    `bun:"first_name,notnull"`
	LastName      string    `bun:"last_name,notnull"`
	Email         string    `bun:"email,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// PhoneModel maps the phones table.
type PhoneModel struct {
	bun.BaseModel `bun:"table:phones,alias:p"`
	ID            int64     `bun:"id,pk,autoincrement"`
	ClientID      int64     `bun:"client_id,notnull"`
	Number        string    `bun:"phone_number,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// summaryRow is one row of the aggregated client listing.
type summaryRow struct {
	ID         int64          `bun:"id"`
	FirstName  string         `bun:"first_name"`
	LastName   string         `bun:"last_name"`
	Email      string         `bun:"email"`
	CreatedAt  time.Time      `bun:"created_at"`
	Phones     sql.NullString `bun:"phones"`
	PhoneCount int            `bun:"phone_count"`
}

// --- Mapping helpers (centralized conversions) ---

func clientModelToModel(c ClientModel) model.Client {
	return model.Client{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, CreatedAt: c.CreatedAt}
}

func phoneModelToModel(p PhoneModel) model.Phone {
	return model.Phone{ID: p.ID, ClientID: p.ClientID, Number: p.Number, CreatedAt: p.CreatedAt}
}

func summaryRowToModel(r summaryRow) model.ClientSummary {
	s := model.ClientSummary{
		Client:     model.Client{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, CreatedAt: r.CreatedAt},
		Phones:     model.NoPhones,
		PhoneCount: r.PhoneCount,
	}
	if r.Phones.Valid && r.Phones.String != "" && r.PhoneCount > 0 {
		s.Phones = r.Phones.String
	}
	return s
}
