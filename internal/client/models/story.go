// Package models defines client-side data models used by the storysync CLI.
package models

import "time"

// Story is a story record as served by the remote API.
type Story struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
}

// FavoriteStory is a locally saved copy of a Story.
type FavoriteStory struct {
	Story
	// FavoritedAt is the local time the story was favorited.
	FavoritedAt time.Time `json:"favoritedAt"`
}

// NewStory is the payload of a story creation request.
type NewStory struct {
	Description string
	// Lat and Lon are nil when the author skipped the location.
	Lat              *float64
	Lon              *float64
	Photo            []byte
	PhotoContentType string
	// IdempotencyKey is sent with replayed submissions so the server can
	// drop a duplicate of a request it already accepted.
	IdempotencyKey string
}

// LoginResult is returned by the remote login endpoint.
type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}
