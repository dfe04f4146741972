// Package records stores entity records in the local SQLite database.
// Each repository is bound to one entity type.
package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/models"
)

// Record is one locally stored entity.
//
// SyncedAt == nil means the content was created or changed locally and the
// server has not confirmed it yet. DeletedAt != nil is a soft delete: the
// record is hidden from default reads until the remote delete is confirmed.
type Record struct {
	EntityType models.EntityType
	ID         string
	OwnerID    string
	Payload    []byte
	SortKey    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncedAt   *time.Time
	DeletedAt  *time.Time
}

// Synced reports whether the server confirmed the current content.
func (r *Record) Synced() bool { return r.SyncedAt != nil }

// Deleted reports whether the record is soft-deleted.
func (r *Record) Deleted() bool { return r.DeletedAt != nil }

// Filter narrows ListByOwner. From and To bound the sort key inclusively and
// are open when empty.
type Filter struct {
	From           string
	To             string
	IncludeDeleted bool
	// OnlySynced keeps records whose content the server confirmed.
	OnlySynced bool
}

// Repository works on records of a single entity type.
//
// GetByID and friends return common.ErrRecordNotFound when no row matches.
type Repository interface {
	// Insert adds a new record. The id must not exist yet.
	Insert(ctx context.Context, rec *Record) error

	// Update overwrites payload, sort key and timestamps of an existing row.
	Update(ctx context.Context, rec *Record) error

	// Upsert inserts rec or overwrites the row with the same id.
	Upsert(ctx context.Context, rec *Record) error

	// SoftDelete sets deleted_at on a visible record.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Purge removes the row, whatever its state.
	Purge(ctx context.Context, id string) error

	// GetByID returns a record unless it is soft-deleted.
	GetByID(ctx context.Context, id string) (*Record, error)

	// GetAnyByID also returns soft-deleted records.
	GetAnyByID(ctx context.Context, id string) (*Record, error)

	// ListByOwner returns the owner's records ordered by sort key, newest first
	// within one key.
	ListByOwner(ctx context.Context, ownerID string, f Filter) ([]*Record, error)

	// Swap replaces the record oldID by rec in one statement sequence. Callers
	// run it inside a transaction.
	Swap(ctx context.Context, oldID string, rec *Record) error

	// PurgeDeletedBefore removes soft-deleted records older than cutoff that
	// no queued operation refers to. It returns the number of removed rows.
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
