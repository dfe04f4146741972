// Package syncqueue keeps the remote operations that have not reached the
// server yet and replays them in enqueue order.
//
// Writers record operations with EnqueueTx in the same transaction as the
// local mutation. A Queue pass hands each pending entry to a Replayer, which
// sends it and reconciles the local store; entries whose replay failed stay
// queued, rejected ones are parked until Retry or Discard.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/tempid"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

// ErrSkipped is returned by a Replayer when the entry vanished or changed
// status between listing and replay.
var ErrSkipped = errors.New("queue entry skipped")

// Replayer sends one queue entry and reconciles the local store on success.
// Lock serializes work on one record with the Replayer's own mutations.
type Replayer interface {
	Replay(ctx context.Context, e queue.Entry) error
	Lock(ctx context.Context, t models.EntityType, id string) (func(), error)
}

// Report summarizes one Process pass.
type Report struct {
	Attempted int
	Synced    int
	Failed    int
	Rejected  int
	Skipped   int
}

type Queue struct {
	store    *localstore.Store
	replayer Replayer
	logger   logging.Logger
}

func New(store *localstore.Store, replayer Replayer, logger logging.Logger) *Queue {
	return &Queue{store: store, replayer: replayer, logger: logger.With("component", "syncqueue")}
}

// EnqueueTx stores e, superseding an entry queued earlier for the same
// record. cause is the failure that made the operation wait, nil when it was
// never attempted. A rejection parks the entry right away.
func EnqueueTx(ctx context.Context, tx *localstore.Tx, e queue.Entry, cause error) error {
	existing, err := tx.Queue().Get(ctx, e.EntityType, e.EntityID)
	switch {
	case err == nil:
		e = queue.Merge(*existing, e)
	case errors.Is(err, common.ErrRecordNotFound):
		e.Attempts = 0
		e.LastError = ""
		e.Status = queue.StatusPending
		if e.EnqueuedAt.IsZero() {
			e.EnqueuedAt = time.Now().UTC()
		}
	default:
		return err
	}

	if cause != nil {
		markFailed(&e, cause)
	}
	return tx.Queue().Put(ctx, e)
}

// FailTx records a failed replay of e. A missing entry means it was already
// resolved elsewhere and is not an error.
func FailTx(ctx context.Context, tx *localstore.Tx, e queue.Entry, cause error) error {
	cur, err := tx.Queue().Get(ctx, e.EntityType, e.EntityID)
	if errors.Is(err, common.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	markFailed(cur, cause)
	return tx.Queue().Put(ctx, *cur)
}

func markFailed(e *queue.Entry, cause error) {
	e.Attempts++
	e.LastError = cause.Error()
	if remote.IsRejected(cause) {
		e.Status = queue.StatusRejected
	}
}

// Enqueue is EnqueueTx in a transaction of its own.
func (q *Queue) Enqueue(ctx context.Context, e queue.Entry) error {
	return q.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		return EnqueueTx(ctx, tx, e, nil)
	})
}

// Process replays the owner's pending entries in queue order.
//
// The pass stops early when ctx is done, or on a failure that would repeat
// for every entry (server unreachable, credentials refused). The error is
// returned along with the report of what was done until then.
func (q *Queue) Process(ctx context.Context, ownerID string) (Report, error) {
	var rep Report

	entries, err := q.store.Queue().List(ctx, ownerID, queue.StatusPending)
	if err != nil {
		return rep, fmt.Errorf("failed to list queue: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		rep.Attempted++
		err := q.replayer.Replay(ctx, e)
		switch {
		case err == nil:
			rep.Synced++
		case errors.Is(err, ErrSkipped):
			rep.Skipped++
		case remote.IsRejected(err):
			rep.Rejected++
		default:
			rep.Failed++
			if errors.Is(err, remote.ErrUnavailable) || errors.Is(err, remote.ErrUnauthorized) {
				q.logger.Info(ctx, "queue pass interrupted", "error", err.Error(), "attempted", rep.Attempted)
				return rep, err
			}
		}
	}

	if rep.Attempted > 0 {
		q.logger.Info(ctx, "queue pass finished",
			"synced", rep.Synced, "failed", rep.Failed, "rejected", rep.Rejected, "skipped", rep.Skipped)
	}
	return rep, nil
}

func (q *Queue) Pending(ctx context.Context, ownerID string) ([]queue.Entry, error) {
	return q.store.Queue().List(ctx, ownerID, queue.StatusPending)
}

func (q *Queue) Rejected(ctx context.Context, ownerID string) ([]queue.Entry, error) {
	return q.store.Queue().List(ctx, ownerID, queue.StatusRejected)
}

func (q *Queue) Counts(ctx context.Context, ownerID string) (map[queue.Status]int, error) {
	return q.store.Queue().Count(ctx, ownerID)
}

// Retry puts a parked entry back in line, keeping its queue position.
func (q *Queue) Retry(ctx context.Context, t models.EntityType, id string) error {
	unlock, err := q.replayer.Lock(ctx, t, id)
	if err != nil {
		return err
	}
	defer unlock()

	return q.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		e, err := tx.Queue().Get(ctx, t, id)
		if err != nil {
			return err
		}
		if e.Status == queue.StatusPending {
			return nil
		}
		e.Status = queue.StatusPending
		e.Attempts = 0
		e.LastError = ""
		return tx.Queue().Put(ctx, *e)
	})
}

// Discard drops the entry and gives up the local change it carried.
//
// A record the server never confirmed is purged. A record it did know is
// restored and marked as synced long ago, so the next refresh replaces it
// with the server's version, or purges it when the server has none.
func (q *Queue) Discard(ctx context.Context, t models.EntityType, id string) error {
	unlock, err := q.replayer.Lock(ctx, t, id)
	if err != nil {
		return err
	}
	defer unlock()

	return q.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		e, err := tx.Queue().Get(ctx, t, id)
		if err != nil {
			return err
		}

		repo := tx.Records(t)
		if e.Kind == queue.KindCreate || tempid.IsTemp(id) {
			if err := repo.Purge(ctx, id); err != nil {
				return err
			}
			return tx.Queue().Delete(ctx, t, id)
		}

		rec, err := repo.GetAnyByID(ctx, id)
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			stale := time.Unix(0, 0).UTC()
			rec.SyncedAt = &stale
			rec.DeletedAt = nil
			if err := repo.Update(ctx, rec); err != nil {
				return err
			}
		}
		return tx.Queue().Delete(ctx, t, id)
	})
}
