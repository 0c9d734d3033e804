// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/i18n"
	"github.com/toeirei/clientbook/internal/model"
)

// openDemoStore opens the throwaway store the demo runs against. It never
// touches the configured database.
var openDemoStore = func(ctx context.Context) (db.Store, error) {
	s, err := db.Open(ctx, db.ConnParams{Engine: string(db.EngineSQLite), Path: ":memory:"})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RunDemo walks through every operation on an in-memory sqlite store and
// prints each step to out.
func RunDemo(ctx context.Context, out io.Writer) error {
	st, err := openDemoStore(ctx)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	defer func() { _ = st.Close() }()

	step := func(id string, args ...any) {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, sectionStyle.Render(i18n.T(id, args...)))
	}
	list := func() error {
		all, err := st.ListClients(ctx)
		if err != nil {
			return err
		}
		return RenderClients(out, all, FormatTable)
	}

	step("demo.step_add")
	ivan, err := st.AddClient(ctx, "Ivan", "Petrov", "ivan.petrov@example.com", []string{"+7-900-123-45-67"})
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	anna, err := st.AddClient(ctx, "Anna", "Smirnova", "anna.smirnova@example.com", nil)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := list(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	step("demo.step_add_phone", ivan)
	if _, err := st.AddPhone(ctx, ivan, "+7-900-765-43-21"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if _, err := st.AddPhone(ctx, anna, "+7-911-000-00-01"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := list(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	step("demo.step_update", ivan)
	if err := st.UpdateClient(ctx, ivan, model.ClientPatch{Email: model.Some("i.petrov@example.com")}); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := list(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	step("demo.step_find", "an")
	found, err := st.FindClients(ctx, model.SearchCriteria{FirstName: model.Some("an")})
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := RenderClients(out, found, FormatTable); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	step("demo.step_duplicate")
	_, err = st.AddClient(ctx, "Ivan", "Sidorov", "i.petrov@example.com", nil)
	if !errors.Is(err, db.ErrDuplicateEmail) {
		return fmt.Errorf("demo: duplicate email was not rejected: %v", err)
	}
	_, _ = fmt.Fprintln(out, errorStyle.Render(DescribeError(err)))

	step("demo.step_delete_phone", ivan)
	if _, err := st.DeletePhone(ctx, ivan, "+7-900-123-45-67"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := list(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	step("demo.step_delete_client", anna)
	if err := st.DeleteClient(ctx, anna); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := list(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, successStyle.Render(i18n.T("demo.done")))
	return nil
}
