// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"errors"
	"fmt"
	"testing"

	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/i18n"
)

func TestDescribeError(t *testing.T) {
	i18n.Init("en")
	cause := errors.New("driver said no")
	cases := []struct {
		err  error
		want string
	}{
		{errNotNumeric, i18n.T("error.numeric_id")},
		{fmt.Errorf("%w: id 5", db.ErrClientNotFound), i18n.T("error.client_not_found")},
		{WithClient(5, fmt.Errorf("%w: id 5", db.ErrClientNotFound)), i18n.T("error.client_not_found_id", 5)},
		{fmt.Errorf("%w: %w", db.ErrDuplicateEmail, cause), i18n.T("error.duplicate_email")},
		{fmt.Errorf("%w: %w", db.ErrReferentialViolation, cause), i18n.T("error.referential")},
	}
	for _, tc := range cases {
		if got := DescribeError(tc.err); got != tc.want {
			t.Fatalf("DescribeError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}

	wrapped := fmt.Errorf("%w: %w", db.ErrWrite, cause)
	if got := DescribeError(wrapped); got != i18n.T("error.write", wrapped) {
		t.Fatalf("unexpected write error message %q", got)
	}
	if got := DescribeError(cause); got != i18n.T("error.unexpected", cause) {
		t.Fatalf("unexpected fallback message %q", got)
	}
}

func TestWithClientKeepsChain(t *testing.T) {
	if WithClient(1, nil) != nil {
		t.Fatalf("WithClient(nil) should be nil")
	}
	err := WithClient(3, db.ErrDuplicateEmail)
	if !errors.Is(err, db.ErrDuplicateEmail) {
		t.Fatalf("sentinel lost: %v", err)
	}
}
