package models

import "time"

// Story is a stored story. The photo itself lives in object storage under
// PhotoKey.
type Story struct {
	ID             string
	UserID         string
	AuthorName     string
	Description    string
	PhotoKey       string
	Lat            *float64
	Lon            *float64
	IdempotencyKey string
	CreatedAt      time.Time
}
