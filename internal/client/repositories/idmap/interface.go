// Package idmap remembers which server id replaced a temporary id, so that
// references captured before the swap still resolve.
package idmap

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Repository interface {
	Put(ctx context.Context, t models.EntityType, tempID, serverID string) error
	// Resolve returns the server id for tempID and whether one is known.
	Resolve(ctx context.Context, t models.EntityType, tempID string) (string, bool, error)
}
