// Package records stores entity payloads of every type in one table keyed by
// owner, type and id.
package records

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/models"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
)

// Repository methods return common.ErrorNotFound for unknown ids and
// common.ErrorAlreadyExists when a food barcode is taken by another food of
// the same owner.
type Repository interface {
	Create(ctx context.Context, rec *sm.Record) error
	Get(ctx context.Context, ownerID string, t models.EntityType, id string) (*sm.Record, error)
	Update(ctx context.Context, rec *sm.Record) error
	Delete(ctx context.Context, ownerID string, t models.EntityType, id string) error
	List(ctx context.Context, ownerID string, t models.EntityType, f sm.RecordFilter) ([]*sm.Record, error)
}
