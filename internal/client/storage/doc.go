// Package storage opens the local SQLite store, applies its schema steps and
// maps driver failures onto the store's error kinds.
//
// The store is a single file holding favorites, pending submissions,
// key/value metadata and cached HTTP responses. Every schema change is an
// ordered goose migration embedded from internal/client/migrations; goose
// records applied versions, so reopening an up-to-date file is a no-op and
// an older file is upgraded in place.
package storage
