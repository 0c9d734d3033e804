// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/toeirei/clientbook/internal/model"
)

// TestEndToEnd_IvanPetrov walks one client through its whole lifecycle.
func TestEndToEnd_IvanPetrov(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddClient(ctx, "Ivan", "Petrov", "ivan@example.com", []string{"+1000", "+1001"})
	if err != nil {
		t.Fatalf("AddClient failed: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected first client id 1, got %d", id)
	}

	list, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 client, got %d", len(list))
	}
	if list[0].PhoneCount != 2 || list[0].Phones != "+1000, +1001" {
		t.Fatalf("unexpected phones: count=%d phones=%q", list[0].PhoneCount, list[0].Phones)
	}
	if !reflect.DeepEqual(list[0].Numbers, []string{"+1000", "+1001"}) {
		t.Fatalf("unexpected numbers: %#v", list[0].Numbers)
	}
	if list[0].CreatedAt.IsZero() {
		t.Fatalf("expected registration time to be set")
	}

	if err := s.UpdateClient(ctx, 1, model.ClientPatch{Phones: model.Some([]string{"+2000"})}); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	list, _ = s.ListClients(ctx)
	if len(list) != 1 || list[0].PhoneCount != 1 || list[0].Phones != "+2000" {
		t.Fatalf("unexpected listing after phone replacement: %+v", list)
	}

	if err := s.DeleteClient(ctx, 1); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
	list, _ = s.ListClients(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty listing, got %+v", list)
	}

	if _, err := s.AddPhone(ctx, 1, "+3000"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestListClients_NoPhonesSentinel(t *testing.T) {
	s := newTestStore(t)
	mustAddClient(t, s, "Olga", "Smirnova", "olga@example.com")

	list, err := s.ListClients(context.Background())
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 client, got %d", len(list))
	}
	if list[0].Phones != model.NoPhones || list[0].PhoneCount != 0 || list[0].Numbers != nil {
		t.Fatalf("expected no-phone sentinel, got %+v", list[0])
	}
}

func TestListClients_OrderedByID(t *testing.T) {
	s := newTestStore(t)
	a := mustAddClient(t, s, "Zoe", "Z", "z@example.com")
	b := mustAddClient(t, s, "Adam", "A", "a@example.com")

	list, err := s.ListClients(context.Background())
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != a || list[1].ID != b {
		t.Fatalf("expected ascending ids %d,%d, got %+v", a, b, list)
	}
}

func TestAddClient_DuplicateEmail_EitherOrder(t *testing.T) {
	for _, order := range [][2]string{{"first", "second"}, {"second", "first"}} {
		t.Run(order[0]+"_then_"+order[1], func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			mustAddClient(t, s, order[0], "Client", "same@example.com", "+1")

			_, err := s.AddClient(ctx, order[1], "Client", "same@example.com", []string{"+2", "+3"})
			if !errors.Is(err, ErrDuplicateEmail) {
				t.Fatalf("expected ErrDuplicateEmail, got %v", err)
			}
			if got := countRows(t, s, "clients"); got != 1 {
				t.Fatalf("expected exactly one client, got %d", got)
			}
			if got := countRows(t, s, "phones"); got != 1 {
				t.Fatalf("expected phones of the rejected client to be rolled back, got %d rows", got)
			}
			list, _ := s.ListClients(ctx)
			if list[0].FirstName != order[0] {
				t.Fatalf("expected the first client to survive, got %+v", list[0])
			}
		})
	}
}

// TestAddClient_AtomicOnPhoneFailure makes the second phone insert fail with
// a trigger and checks that neither the client nor the first phone remain.
func TestAddClient_AtomicOnPhoneFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := ExecRaw(ctx, s.bun, `CREATE TRIGGER reject_bad_phone BEFORE INSERT ON phones
		WHEN NEW.phone_number = 'bad'
		BEGIN SELECT RAISE(ABORT, 'rejected phone'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	_, err := s.AddClient(ctx, "Ivan", "Petrov", "ivan@example.com", []string{"+1000", "bad"})
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
	if got := countRows(t, s, "clients"); got != 0 {
		t.Fatalf("client row persisted after failed add: %d", got)
	}
	if got := countRows(t, s, "phones"); got != 0 {
		t.Fatalf("phone rows persisted after failed add: %d", got)
	}
}

func TestAddClient_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cases := []struct {
		first, last, email string
		phones             []string
	}{
		{"", "Petrov", "a@example.com", nil},
		{"Ivan", " ", "a@example.com", nil},
		{"Ivan", "Petrov", "", nil},
		{"Ivan", "Petrov", "a@example.com", []string{"+1", ""}},
	}
	for _, c := range cases {
		if _, err := s.AddClient(ctx, c.first, c.last, c.email, c.phones); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", c, err)
		}
	}
	if got := countRows(t, s, "clients"); got != 0 {
		t.Fatalf("expected no clients after rejected input, got %d", got)
	}
}

func TestAddPhone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAddClient(t, s, "Anna", "Ivanova", "anna@example.com")

	ok, err := s.AddPhone(ctx, id, "+7 900 000 00 00")
	if err != nil || !ok {
		t.Fatalf("AddPhone = %v, %v", ok, err)
	}
	got, err := s.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if got.PhoneCount != 1 || got.Phones != "+7 900 000 00 00" {
		t.Fatalf("unexpected summary: %+v", got)
	}

	if _, err := s.AddPhone(ctx, id, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank number, got %v", err)
	}
}

func TestAddPhone_ReferentialGuard(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.AddPhone(context.Background(), 42, "+1")
	if ok || !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got ok=%v err=%v", ok, err)
	}
	if got := countRows(t, s, "phones"); got != 0 {
		t.Fatalf("orphan phone created: %d rows", got)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	s := newTestStore(t)
	_, err := ExecRaw(context.Background(), s.bun, "INSERT INTO phones (client_id, phone_number) VALUES (?, ?)", 999, "+1")
	if !errors.Is(MapDBError(err), ErrReferentialViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestUpdateClient_AllUnsetIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", "+1", "+2")
	before, _ := s.GetClient(ctx, id)

	if err := s.UpdateClient(ctx, id, model.ClientPatch{}); err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	after, _ := s.GetClient(ctx, id)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("empty patch changed data:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUpdateClient_ScalarFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", "+1")

	patch := model.ClientPatch{LastName: model.Some("Sidorov"), Email: model.Some("ivan.s@example.com")}
	if err := s.UpdateClient(ctx, id, patch); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	got, _ := s.GetClient(ctx, id)
	if got.FirstName != "Ivan" || got.LastName != "Sidorov" || got.Email != "ivan.s@example.com" {
		t.Fatalf("unexpected client after update: %+v", got.Client)
	}
	if got.Phones != "+1" {
		t.Fatalf("phones must be untouched when Phones is unset, got %q", got.Phones)
	}
}

func TestUpdateClient_EmptyPhonesClearsAll(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("phones_%d", n), func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			phones := []string{"+1", "+2", "+3"}[:n]
			id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", phones...)

			if err := s.UpdateClient(ctx, id, model.ClientPatch{Phones: model.Some([]string{})}); err != nil {
				t.Fatalf("UpdateClient failed: %v", err)
			}
			got, _ := s.GetClient(ctx, id)
			if got.PhoneCount != 0 || got.Phones != model.NoPhones {
				t.Fatalf("expected no phones, got %+v", got)
			}
		})
	}
}

func TestUpdateClient_DuplicateEmailRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAddClient(t, s, "Anna", "Ivanova", "anna@example.com")
	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", "+1")

	patch := model.ClientPatch{
		FirstName: model.Some("Vanya"),
		Email:     model.Some("anna@example.com"),
		Phones:    model.Some([]string{"+9"}),
	}
	if err := s.UpdateClient(ctx, id, patch); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	got, _ := s.GetClient(ctx, id)
	if got.FirstName != "Ivan" || got.Email != "ivan@example.com" || got.Phones != "+1" {
		t.Fatalf("failed update leaked changes: %+v", got)
	}
}

func TestUpdateClient_MissingClientAndValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.UpdateClient(ctx, 5, model.ClientPatch{FirstName: model.Some("X")}); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if err := s.UpdateClient(ctx, 5, model.ClientPatch{}); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound for empty patch on missing client, got %v", err)
	}

	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com")
	if err := s.UpdateClient(ctx, id, model.ClientPatch{Email: model.Some("")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation when clearing email, got %v", err)
	}
	if err := s.UpdateClient(ctx, id, model.ClientPatch{Phones: model.Some([]string{""})}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank phone, got %v", err)
	}
}

func TestDeletePhone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", "+1", "+2", "+1")

	ok, err := s.DeletePhone(ctx, id, "+1")
	if err != nil || !ok {
		t.Fatalf("DeletePhone = %v, %v", ok, err)
	}
	got, _ := s.GetClient(ctx, id)
	// Only the oldest "+1" goes; the later duplicate stays.
	if got.Phones != "+2, +1" {
		t.Fatalf("unexpected phones after delete: %q", got.Phones)
	}

	ok, err = s.DeletePhone(ctx, id, "+404")
	if err != nil || ok {
		t.Fatalf("expected (false, nil) for unknown number, got %v, %v", ok, err)
	}

	if _, err := s.DeletePhone(ctx, id+100, "+2"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestDeletePhone_OtherClientsNumberUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAddClient(t, s, "A", "A", "a@example.com", "+1")
	b := mustAddClient(t, s, "B", "B", "b@example.com", "+1")

	if ok, err := s.DeletePhone(ctx, a, "+1"); err != nil || !ok {
		t.Fatalf("DeletePhone = %v, %v", ok, err)
	}
	got, _ := s.GetClient(ctx, b)
	if got.Phones != "+1" {
		t.Fatalf("other client's phone removed: %+v", got)
	}
}

func TestDeleteClient_Cascade(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("phones_%d", n), func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			keep := mustAddClient(t, s, "Keep", "Me", "keep@example.com", "+9")
			phones := []string{"+1", "+2", "+3"}[:n]
			id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", phones...)

			if err := s.DeleteClient(ctx, id); err != nil {
				t.Fatalf("DeleteClient failed: %v", err)
			}
			var left int
			if err := QueryRawInto(ctx, s.bun, &left, "SELECT COUNT(*) FROM phones WHERE client_id = ?", id); err != nil {
				t.Fatalf("count phones: %v", err)
			}
			if left != 0 {
				t.Fatalf("%d phones survived the cascade", left)
			}
			if _, err := s.GetClient(ctx, id); !errors.Is(err, ErrClientNotFound) {
				t.Fatalf("expected client gone, got %v", err)
			}
			if got, _ := s.GetClient(ctx, keep); got == nil || got.PhoneCount != 1 {
				t.Fatalf("unrelated client affected: %+v", got)
			}
		})
	}
}

func TestDeleteClient_Missing(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteClient(context.Background(), 77); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestPhonesOrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com", "+3", "+1")
	if _, err := s.AddPhone(ctx, id, "+2"); err != nil {
		t.Fatalf("AddPhone failed: %v", err)
	}
	got, _ := s.GetClient(ctx, id)
	if got.Phones != "+3, +1, +2" {
		t.Fatalf("expected insertion order, got %q", got.Phones)
	}
}

func TestGetClient_NumbersContainingSeparator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAddClient(t, s, "Ivan", "Petrov", "ivan@example.com")

	if err := s.UpdateClient(ctx, id, model.ClientPatch{Phones: model.Some([]string{"+1, ext. 2", "+3"})}); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	got, err := s.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if got.PhoneCount != 2 || !reflect.DeepEqual(got.Numbers, []string{"+1, ext. 2", "+3"}) {
		t.Fatalf("unexpected numbers: count=%d numbers=%#v", got.PhoneCount, got.Numbers)
	}

	list, err := s.FindClients(ctx, model.SearchCriteria{Phone: model.Some("ext")})
	if err != nil {
		t.Fatalf("FindClients failed: %v", err)
	}
	if len(list) != 1 || len(list[0].Numbers) != list[0].PhoneCount {
		t.Fatalf("numbers and count disagree: %+v", list)
	}
}
