// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/clientbook/internal/model"
	"github.com/uptrace/bun"
)

// ClientSearcher defines a minimal interface for searching clients.
// Consumers can depend on this instead of concrete Store implementations.
type ClientSearcher interface {
	FindClients(ctx context.Context, criteria model.SearchCriteria) ([]model.ClientSummary, error)
}

// BunClientSearcher is a Bun-based implementation of ClientSearcher.
type BunClientSearcher struct {
	bdb    *bun.DB
	engine Engine
}

// NewBunClientSearcher creates a new BunClientSearcher.
func NewBunClientSearcher(bdb *bun.DB, engine Engine) *BunClientSearcher {
	return &BunClientSearcher{bdb: bdb, engine: engine}
}

// NewClientSearcherFromStore creates a ClientSearcher from any Store by
// using the underlying Bun DB.
func NewClientSearcherFromStore(s Store) ClientSearcher {
	return NewBunClientSearcher(s.BunDB(), s.Engine())
}

// FindClients returns the clients matching every set criterion, in the same
// shape and order as ListClients. No criteria returns every client.
func (s *BunClientSearcher) FindClients(ctx context.Context, criteria model.SearchCriteria) ([]model.ClientSummary, error) {
	filters := FiltersFromCriteria(criteria)
	dbLogf("db: find clients with %d filter(s): %v", len(filters), filters)
	return querySummaries(ctx, s.bdb, s.engine, filters)
}
