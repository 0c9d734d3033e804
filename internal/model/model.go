// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model holds the plain data types shared by the store, the console
// and the CLI. It has no dependencies on the database layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// NoPhones is the marker shown in place of a phone list for clients that
// have no phone numbers.
const NoPhones = "no phone"

// PhoneSeparator joins a client's phone numbers in list and search results.
const PhoneSeparator = ", "

// Client is a single customer record.
type Client struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns "First Last".
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// String returns the name followed by the email, e.g. "Ivan Petrov <ivan@example.com>".
func (c Client) String() string {
	return fmt.Sprintf("%s <%s>", c.FullName(), c.Email)
}

// Phone is a phone number owned by exactly one client.
type Phone struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Number    string    `json:"phone_number"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientSummary is the read model returned by listing and searching: the
// client plus its aggregated phone numbers.
type ClientSummary struct {
	Client
	// Phones is the comma-joined phone list ordered by phone creation time,
	// or NoPhones when the client has none.
	Phones     string   `json:"phones"`
	PhoneCount int      `json:"phone_count"`
	Numbers    []string `json:"numbers"`
}

// HasPhones reports whether the client owns at least one phone number.
func (s ClientSummary) HasPhones() bool {
	return s.PhoneCount > 0
}

// JoinPhones renders numbers the way list and search results show them.
func JoinPhones(numbers []string) string {
	if len(numbers) == 0 {
		return NoPhones
	}
	return strings.Join(numbers, PhoneSeparator)
}

// Totals counts clients and phones across a set of summaries.
func Totals(summaries []ClientSummary) (clients, phones int) {
	for _, s := range summaries {
		phones += s.PhoneCount
	}
	return len(summaries), phones
}
