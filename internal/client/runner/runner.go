// Package runner implements the offline-first mutation protocol shared by
// every entity repository.
//
// A mutation is written to the local store together with its queue entry in
// one transaction. Only that step can fail the call. The runner then tries
// the remote call right away; success reconciles the local store and removes
// the entry, failure leaves the entry for the next queue pass. Either way the
// caller gets the local view and a separately surfaced remote outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/keylock"
	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/tempid"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

// ErrParentPending means a payload refers to a record whose create has not
// reached the server yet. The operation waits in the queue behind it.
var ErrParentPending = errors.New("referenced record is not synced yet")

// Remote is the part of the server API the runner needs.
type Remote interface {
	Create(ctx context.Context, t models.EntityType, idempotencyKey string, payload []byte) (*remote.Record, error)
	Update(ctx context.Context, t models.EntityType, id string, payload []byte) (*remote.Record, error)
	Delete(ctx context.Context, t models.EntityType, id string) error
}

// Resolver maps a possibly temporary id of type t to its server id.
type Resolver func(ctx context.Context, t models.EntityType, id string) (string, error)

// Entity is what the runner knows about one entity type.
type Entity struct {
	Type models.EntityType
	// SortKey computes the local sort key of a server payload.
	SortKey func(payload []byte) (string, error)
	// Prepare rewrites the references in payload to server ids before it is
	// sent. Nil sends the payload as stored.
	Prepare func(ctx context.Context, resolve Resolver, payload []byte) ([]byte, error)
}

type Outcome int

const (
	// Synced: the server confirmed the operation and the local store holds
	// the server's version.
	Synced Outcome = iota + 1
	// Queued: the operation waits in the queue for a later pass.
	Queued
	// Rejected: the server refused the operation. The local change is kept
	// and the entry is parked until it is retried or discarded.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Synced:
		return "synced"
	case Queued:
		return "queued"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the value of a completed mutation plus what happened remotely.
// RemoteErr is set for Queued and Rejected outcomes when an attempt failed.
type Result[T any] struct {
	Value     T
	Outcome   Outcome
	RemoteErr error
}

const defaultRemoteTimeout = 10 * time.Second

type Runner struct {
	store    *localstore.Store
	remote   Remote
	logger   logging.Logger
	reporter logging.Reporter

	locks         keylock.Map
	remoteTimeout time.Duration
	now           func() time.Time

	mu       sync.RWMutex
	entities map[models.EntityType]Entity
}

type Option func(*Runner)

// WithRemoteTimeout bounds every remote call. Zero or less keeps the default.
func WithRemoteTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.remoteTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(store *localstore.Store, rem Remote, logger logging.Logger, reporter logging.Reporter, opts ...Option) *Runner {
	r := &Runner{
		store:         store,
		remote:        rem,
		logger:        logger.With("component", "runner"),
		reporter:      reporter,
		remoteTimeout: defaultRemoteTimeout,
		now:           func() time.Time { return time.Now().UTC() },
		entities:      make(map[models.EntityType]Entity),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register makes an entity type known. Registering a type again replaces it.
func (r *Runner) Register(e Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[e.Type] = e
}

func (r *Runner) entity(t models.EntityType) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[t]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %s", models.ErrUnknownType, t)
	}
	return e, nil
}

// Store returns the local store the runner writes to.
func (r *Runner) Store() *localstore.Store {
	return r.store
}

func lockKey(t models.EntityType, id string) string {
	return string(t) + "/" + id
}

// Lock takes the per-record lock without resolving temporary ids. Queue
// entries are keyed by the id they were enqueued under, so this is what
// queue maintenance uses.
func (r *Runner) Lock(ctx context.Context, t models.EntityType, id string) (func(), error) {
	return r.locks.Lock(ctx, lockKey(t, id))
}

// lockEntity locks the record id of type t. A temporary id that was swapped
// while waiting is followed to its server id, which is returned.
func (r *Runner) lockEntity(ctx context.Context, t models.EntityType, id string) (string, func(), error) {
	for {
		unlock, err := r.locks.Lock(ctx, lockKey(t, id))
		if err != nil {
			return "", nil, err
		}
		if !tempid.IsTemp(id) {
			return id, unlock, nil
		}

		resolved, err := r.store.Resolve(ctx, t, id)
		if err != nil {
			unlock()
			return "", nil, common.LocalPersistence("resolve id", err)
		}
		if resolved == id {
			return id, unlock, nil
		}
		unlock()
		id = resolved
	}
}

// resolve is the Resolver handed to Entity.Prepare.
func (r *Runner) resolve(ctx context.Context, t models.EntityType, id string) (string, error) {
	out, err := r.store.Resolve(ctx, t, id)
	if err != nil {
		return "", common.LocalPersistence("resolve reference", err)
	}
	if tempid.IsTemp(out) {
		return "", fmt.Errorf("%w: %s[%s]", ErrParentPending, t, id)
	}
	return out, nil
}

// localError keeps precondition and persistence errors as they are and
// classifies everything else raised by the local write as persistence.
func localError(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrPrecondition),
		errors.Is(err, common.ErrLocalPersistence),
		errors.Is(err, models.ErrUnknownType),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return common.LocalPersistence(op, err)
	}
}
