// Package idempotency remembers which record a create request with a given
// key produced, so that a repeated request returns the same record.
package idempotency

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Repository interface {
	// Put binds key to recordID. Binding a key twice is
	// common.ErrorAlreadyExists.
	Put(ctx context.Context, ownerID string, t models.EntityType, key, recordID string) error
	// Lookup returns the record id bound to key, or common.ErrorNotFound.
	Lookup(ctx context.Context, ownerID string, t models.EntityType, key string) (string, error)
}
