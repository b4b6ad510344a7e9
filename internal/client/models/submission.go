package models

import "time"

// PendingSubmission is a story creation request queued while offline.
type PendingSubmission struct {
	ID          int64
	Description string
	Lat         *float64
	Lon         *float64
	// Photo is the photo encoded as a data URL; empty when the story has none.
	Photo string
	// Token is the credential captured when the submission was queued.
	Token          string
	IdempotencyKey string
	CreatedAt      time.Time
	Synced         bool
	SyncedAt       *time.Time
}

// NewSubmission holds the caller-provided fields of a PendingSubmission.
type NewSubmission struct {
	Description string
	Lat         *float64
	Lon         *float64
	Photo       string
	Token       string
}
