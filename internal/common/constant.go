// Package common contains constants and sentinel errors shared by the
// storysync client and server.
package common

const (
	// AuthorizationHeader carries the bearer credential.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the token in AuthorizationHeader.
	BearerPrefix = "Bearer "
	// IdempotencyKeyHeader lets the server collapse repeated story submissions.
	IdempotencyKeyHeader = "Idempotency-Key"

	// PhotoFormField is the multipart field holding the story photo.
	PhotoFormField = "photo"
	// PhotoFileName is the file name used for replayed photos.
	PhotoFileName = "photo.jpg"
	// MaxPhotoSize is the largest photo the API accepts.
	MaxPhotoSize = 1 << 20
)
