// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"

	"github.com/toeirei/clientbook/internal/db"
)

// StoreFactory opens a store from connection parameters (used by migrate).
type StoreFactory interface {
	Open(ctx context.Context, p db.ConnParams) (db.Store, error)
}

// StoreFactoryFunc adapts a function to StoreFactory.
type StoreFactoryFunc func(ctx context.Context, p db.ConnParams) (db.Store, error)

func (f StoreFactoryFunc) Open(ctx context.Context, p db.ConnParams) (db.Store, error) {
	return f(ctx, p)
}

// DefaultStoreFactory opens stores with db.Open and makes sure the target
// database exists first.
var DefaultStoreFactory StoreFactory = StoreFactoryFunc(func(ctx context.Context, p db.ConnParams) (db.Store, error) {
	if err := db.EnsureDatabase(ctx, p); err != nil {
		return nil, err
	}
	s, err := db.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	return s, nil
})

// DBMaintainer runs engine-specific maintenance operations.
type DBMaintainer interface {
	RunDBMaintenance(ctx context.Context, engine db.Engine, dsn string) error
}

// DBMaintainerFunc adapts a function to DBMaintainer.
type DBMaintainerFunc func(ctx context.Context, engine db.Engine, dsn string) error

func (f DBMaintainerFunc) RunDBMaintenance(ctx context.Context, engine db.Engine, dsn string) error {
	return f(ctx, engine, dsn)
}

// DefaultDBMaintainer runs db.RunDBMaintenance.
var DefaultDBMaintainer DBMaintainer = DBMaintainerFunc(db.RunDBMaintenance)

// Reporter is used by facades to emit progress or human-readable messages.
// Implementations may write to stdout, logs, or test buffers.
type Reporter interface {
	Reportf(format string, args ...any)
}

type nopReporter struct{}

func (nopReporter) Reportf(string, ...any) {}
