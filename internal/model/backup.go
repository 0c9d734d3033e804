// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// BackupSchemaVersion is written into every backup produced by this build.
const BackupSchemaVersion = 1

// BackupData is a container for all data to be exported for a backup.
type BackupData struct {
	// SchemaVersion helps in handling format changes during restore.
	SchemaVersion int `json:"schema_version"`

	// Data from each table.
	Clients []Client `json:"clients"`
	Phones  []Phone  `json:"phones"`
}

// PhonesFor returns the phones in b owned by clientID, in backup order.
func (b *BackupData) PhonesFor(clientID int64) []Phone {
	var out []Phone
	for _, p := range b.Phones {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}
