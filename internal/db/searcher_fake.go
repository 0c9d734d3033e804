// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/clientbook/internal/model"
)

// FakeClientSearcher is a minimal, configurable fake used by tests.
type FakeClientSearcher struct {
	// Results to return from FindClients. If nil, an empty slice is returned.
	Results []model.ClientSummary
	// Err to return from FindClients if non-nil.
	Err error
	// Last records the criteria of the most recent call.
	Last model.SearchCriteria
}

// FindClients implements ClientSearcher for the fake.
func (f *FakeClientSearcher) FindClients(_ context.Context, criteria model.SearchCriteria) ([]model.ClientSummary, error) {
	f.Last = criteria
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Results == nil {
		return []model.ClientSummary{}, nil
	}
	return f.Results, nil
}
