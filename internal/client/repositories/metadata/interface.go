// Package metadata is a small key/value table in the local store. It keeps
// the session credential and other single-value client state.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken        = "token"
	KeyUserName     = "user_name"
	KeyPushEndpoint = "push_endpoint"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
