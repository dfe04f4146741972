// Package queue persists deferred remote operations in the sync_queue table.
package queue

import (
	"context"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

type Status string

const (
	// StatusPending entries are replayed by every queue pass.
	StatusPending Status = "pending"
	// StatusRejected entries were refused by the server and wait for an
	// explicit retry or discard.
	StatusRejected Status = "rejected"
)

// Entry is a remote operation that still has to reach the server. There is at
// most one entry per (EntityType, EntityID).
type Entry struct {
	Seq        int64
	EntityType models.EntityType
	EntityID   string
	OwnerID    string
	Kind       Kind
	Payload    []byte
	EnqueuedAt time.Time
	Attempts   int
	LastError  string
	Status     Status
}

// Repository stores queue entries. Get returns common.ErrRecordNotFound when
// no entry exists for the id.
type Repository interface {
	Get(ctx context.Context, t models.EntityType, id string) (*Entry, error)

	// Put inserts e or overwrites the entry for the same record. An
	// overwritten entry keeps its Seq and EnqueuedAt.
	Put(ctx context.Context, e Entry) error

	Delete(ctx context.Context, t models.EntityType, id string) error

	// List returns the owner's entries with the given status in queue order.
	List(ctx context.Context, ownerID string, status Status) ([]Entry, error)

	// Count returns the number of entries per status for the owner.
	Count(ctx context.Context, ownerID string) (map[Status]int, error)
}
