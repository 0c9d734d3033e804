// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/clientbook/internal/model"
	"github.com/uptrace/bun"
)

// ClientRepository holds the client and phone write operations and the
// plain listings. Every multi-statement write is atomic.
type ClientRepository interface {
	// AddClient stores a client and its phones and returns the new id.
	AddClient(ctx context.Context, firstName, lastName, email string, phones []string) (int64, error)
	// AddPhone attaches a phone number to an existing client.
	AddPhone(ctx context.Context, clientID int64, number string) (bool, error)
	// UpdateClient applies a partial update. A set Phones field replaces the
	// whole phone set.
	UpdateClient(ctx context.Context, clientID int64, patch model.ClientPatch) error
	// DeletePhone removes the oldest phone of the client with this exact
	// number and reports whether one was removed.
	DeletePhone(ctx context.Context, clientID int64, number string) (bool, error)
	// DeleteClient removes a client together with its phones.
	DeleteClient(ctx context.Context, clientID int64) error
	// ListClients returns every client ordered by id.
	ListClients(ctx context.Context) ([]model.ClientSummary, error)
	// GetClient returns one client summary.
	GetClient(ctx context.Context, clientID int64) (*model.ClientSummary, error)
}

// BackupStore moves the whole dataset in and out of a store.
type BackupStore interface {
	ExportDataForBackup(ctx context.Context) (*model.BackupData, error)
	// ImportDataFromBackup wipes the store and replaces its contents.
	ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error
	// IntegrateDataFromBackup merges a backup without deleting anything.
	IntegrateDataFromBackup(ctx context.Context, backup *model.BackupData) error
}

// Store is the handle returned by Open. Callers own it and must Close it.
type Store interface {
	ClientRepository
	ClientSearcher
	BackupStore

	// BunDB returns the underlying Bun DB for adapters that build their own queries.
	BunDB() *bun.DB
	Engine() Engine
	Close() error
}

var _ Store = (*BunStore)(nil)
