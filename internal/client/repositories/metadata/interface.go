// Package metadata is a small key/value store in the local database. It keeps
// device-level state such as the signed-in session.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// GetMany returns the values of the keys that exist.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	// SetMany writes all values. Callers wanting atomicity run it in a transaction.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}
