package models

import "time"

// Snapshot is a frozen copy of a household dataset as of a given date.
// Only raw records are stored; every derived view is recomputed on load.
type Snapshot struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	SnapshotDate time.Time   `json:"snapshotDate"`
	CreatedAt    time.Time   `json:"createdAt"`
	Records      []RawRecord `json:"records,omitempty"`
}
