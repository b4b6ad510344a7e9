package models

import "time"

// Subscription is a push endpoint registered by a user.
type Subscription struct {
	Endpoint  string
	UserID    string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}
