// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"errors"

	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/i18n"
)

// errNotNumeric is returned when a client id prompt got something other
// than a positive integer.
var errNotNumeric = errors.New("client id is not numeric")

// clientError attaches the client id an action was working on, so the
// message can name it.
type clientError struct {
	id  int64
	err error
}

func (e *clientError) Error() string { return e.err.Error() }
func (e *clientError) Unwrap() error { return e.err }

// WithClient tags err with the client id it concerns.
func WithClient(id int64, err error) error {
	if err == nil {
		return nil
	}
	return &clientError{id: id, err: err}
}

// DescribeError turns a store error into a localized, user-facing message.
func DescribeError(err error) string {
	var id int64
	var ce *clientError
	if errors.As(err, &ce) {
		id = ce.id
	}
	switch {
	case errors.Is(err, errNotNumeric):
		return i18n.T("error.numeric_id")
	case errors.Is(err, db.ErrClientNotFound):
		if id > 0 {
			return i18n.T("error.client_not_found_id", id)
		}
		return i18n.T("error.client_not_found")
	case errors.Is(err, db.ErrDuplicateEmail):
		return i18n.T("error.duplicate_email")
	case errors.Is(err, db.ErrReferentialViolation):
		return i18n.T("error.referential")
	case errors.Is(err, db.ErrValidation):
		return i18n.T("error.validation", err)
	case errors.Is(err, db.ErrConnectivity):
		return i18n.T("error.connectivity", err)
	case errors.Is(err, db.ErrSchema):
		return i18n.T("error.schema", err)
	case errors.Is(err, db.ErrWrite):
		return i18n.T("error.write", err)
	}
	return i18n.T("error.unexpected", err)
}
