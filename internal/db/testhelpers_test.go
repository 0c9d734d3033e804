// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"strings"
	"testing"
)

// newTestStore opens an in-memory sqlite store private to the calling test
// and closes it when the test ends.
func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	p := ConnParams{Engine: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"}
	s, err := Open(context.Background(), p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// mustAddClient adds a client and fails the test on error.
func mustAddClient(t *testing.T, s Store, first, last, email string, phones ...string) int64 {
	t.Helper()
	id, err := s.AddClient(context.Background(), first, last, email, phones)
	if err != nil {
		t.Fatalf("AddClient(%s %s) failed: %v", first, last, err)
	}
	return id
}

// countRows returns the number of rows in table.
func countRows(t *testing.T, s *BunStore, table string) int {
	t.Helper()
	n, err := s.bun.NewSelect().TableExpr(table).Count(context.Background())
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
