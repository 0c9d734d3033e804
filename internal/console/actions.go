// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/toeirei/clientbook/internal/i18n"
	"github.com/toeirei/clientbook/internal/model"
)

func (c *Controller) read(id string, args ...any) (string, error) {
	return c.in.ReadLine(i18n.T(id, args...))
}

// readID reads a client id and rejects anything but a positive integer
// before the store is touched.
func (c *Controller) readID(prompt string) (int64, error) {
	line, err := c.read(prompt)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(line, 10, 64)
	if err != nil || id <= 0 {
		return 0, errNotNumeric
	}
	return id, nil
}

// readPhones reads numbers one per line until a blank line.
func (c *Controller) readPhones() ([]string, error) {
	var phones []string
	for {
		line, err := c.read("prompt.phone_n", len(phones)+1)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return phones, nil
		}
		phones = append(phones, line)
	}
}

func (c *Controller) confirm(id string, args ...any) (bool, error) {
	answer, err := c.read(id, args...)
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// IsYes accepts "y", "yes" and the active language's word for yes or its
// first letter.
func IsYes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return false
	}
	if a == "y" || a == "yes" {
		return true
	}
	yes := strings.ToLower(i18n.T("answer.yes"))
	if a == yes {
		return true
	}
	first := []rune(yes)
	return len(first) > 0 && a == string(first[0])
}

func (c *Controller) showAll(ctx context.Context) error {
	c.section("list.title")
	list, err := c.repo.ListClients(ctx)
	if err != nil {
		return err
	}
	return RenderClients(c.out, list, FormatTable)
}

func (c *Controller) addClient(ctx context.Context) error {
	c.section("add_client.title")
	first, err := c.read("prompt.first_name")
	if err != nil {
		return err
	}
	last, err := c.read("prompt.last_name")
	if err != nil {
		return err
	}
	email, err := c.read("prompt.email")
	if err != nil {
		return err
	}
	c.println(i18n.T("prompt.phones_hint"))
	phones, err := c.readPhones()
	if err != nil {
		return err
	}
	id, err := c.repo.AddClient(ctx, first, last, email, phones)
	if err != nil {
		return err
	}
	c.success(i18n.T("add_client.success", first, last, id))
	return nil
}

func (c *Controller) addPhone(ctx context.Context) error {
	c.section("add_phone.title")
	id, err := c.readID("prompt.client_id")
	if err != nil {
		return err
	}
	number, err := c.read("prompt.phone")
	if err != nil {
		return err
	}
	if _, err := c.repo.AddPhone(ctx, id, number); err != nil {
		return WithClient(id, err)
	}
	c.success(i18n.T("add_phone.success", number, id))
	return nil
}

func (c *Controller) updateClient(ctx context.Context) error {
	c.section("update_client.title")
	id, err := c.readID("prompt.client_id")
	if err != nil {
		return err
	}
	current, err := c.repo.GetClient(ctx, id)
	if err != nil {
		return WithClient(id, err)
	}

	c.println(i18n.T("update_client.hint"))
	first, err := c.read("prompt.new_first_name", current.FirstName)
	if err != nil {
		return err
	}
	last, err := c.read("prompt.new_last_name", current.LastName)
	if err != nil {
		return err
	}
	email, err := c.read("prompt.new_email", current.Email)
	if err != nil {
		return err
	}
	patch := model.ClientPatch{
		FirstName: model.FromNonEmpty(first),
		LastName:  model.FromNonEmpty(last),
		Email:     model.FromNonEmpty(email),
	}

	change, err := c.confirm("prompt.change_phones")
	if err != nil {
		return err
	}
	if change {
		c.println(i18n.T("prompt.phones_hint"))
		phones, err := c.readPhones()
		if err != nil {
			return err
		}
		patch.Phones = model.Some(phones)
	}

	if patch.IsEmpty() {
		c.println(i18n.T("update_client.no_changes"))
		return nil
	}
	if err := c.repo.UpdateClient(ctx, id, patch); err != nil {
		return WithClient(id, err)
	}
	c.success(i18n.T("update_client.success", id))
	return nil
}

func (c *Controller) deletePhone(ctx context.Context) error {
	c.section("delete_phone.title")
	id, err := c.readID("prompt.client_id")
	if err != nil {
		return err
	}
	number, err := c.read("prompt.phone_to_delete")
	if err != nil {
		return err
	}
	removed, err := c.repo.DeletePhone(ctx, id, number)
	if err != nil {
		return WithClient(id, err)
	}
	if !removed {
		c.println(errorStyle.Render(i18n.T("delete_phone.not_found", number, id)))
		return nil
	}
	c.success(i18n.T("delete_phone.success", number, id))
	return nil
}

func (c *Controller) deleteClient(ctx context.Context) error {
	c.section("delete_client.title")
	id, err := c.readID("prompt.client_id_delete")
	if err != nil {
		return err
	}
	current, err := c.repo.GetClient(ctx, id)
	if err != nil {
		return WithClient(id, err)
	}
	ok, err := c.confirm("prompt.confirm_delete", current.FullName(), id)
	if err != nil {
		return err
	}
	if !ok {
		c.println(i18n.T("delete_client.cancelled"))
		return nil
	}
	if err := c.repo.DeleteClient(ctx, id); err != nil {
		return WithClient(id, err)
	}
	c.success(i18n.T("delete_client.success", current.FullName(), id))
	return nil
}

func (c *Controller) findClient(ctx context.Context) error {
	c.section("find_client.title")
	c.println(i18n.T("find_client.hint"))
	var fields [4]string
	for i, id := range []string{"prompt.first_name", "prompt.last_name", "prompt.email", "prompt.phone"} {
		v, err := c.read(id)
		if err != nil {
			return err
		}
		fields[i] = v
	}
	criteria := model.SearchCriteria{
		FirstName: model.FromNonEmpty(fields[0]),
		LastName:  model.FromNonEmpty(fields[1]),
		Email:     model.FromNonEmpty(fields[2]),
		Phone:     model.FromNonEmpty(fields[3]),
	}
	results, err := c.searcher.FindClients(ctx, criteria)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		c.println(i18n.T("find_client.none"))
		return nil
	}
	c.println(i18n.T("find_client.found", len(results)))
	return RenderClients(c.out, results, FormatTable)
}
