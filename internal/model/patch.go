// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "strings"

// ClientPatch describes a partial client update. Unset fields keep their
// stored value. When Phones is set, even to an empty slice, it replaces the
// client's entire phone set.
type ClientPatch struct {
	FirstName Optional[string]
	LastName  Optional[string]
	Email     Optional[string]
	Phones    Optional[[]string]
}

// IsEmpty reports whether the patch changes nothing.
func (p ClientPatch) IsEmpty() bool {
	return !p.FirstName.IsSet() && !p.LastName.IsSet() && !p.Email.IsSet() && !p.Phones.IsSet()
}

// SearchCriteria are the optional filters for a client search. Each set
// criterion is a case-insensitive substring match; criteria are ANDed.
type SearchCriteria struct {
	FirstName Optional[string]
	LastName  Optional[string]
	Email     Optional[string]
	Phone     Optional[string]
}

// IsEmpty reports whether no criterion carries a non-blank value.
func (c SearchCriteria) IsEmpty() bool {
	for _, o := range []Optional[string]{c.FirstName, c.LastName, c.Email, c.Phone} {
		if v, ok := o.Get(); ok && strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
