package runner

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/client/syncqueue"
	"github.com/dmitrijs2005/foodlog/internal/client/tempid"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

// CreateOp describes a new record of Type owned by Owner.
type CreateOp[T any] struct {
	Type  models.EntityType
	Owner string
	// Build returns the payload and sort key of the new record. It runs inside
	// the local transaction; an error aborts the create with no side effects.
	Build func(ctx context.Context, tx *localstore.Tx) (payload []byte, sortKey string, err error)
	View  func(rec *records.Record) (T, error)
}

// UpdateOp describes a change to the record ID.
type UpdateOp[T any] struct {
	Type  models.EntityType
	Owner string
	ID    string
	// Mutate returns the new payload and sort key given the current record.
	Mutate func(ctx context.Context, tx *localstore.Tx, cur *records.Record) (payload []byte, sortKey string, err error)
	View   func(rec *records.Record) (T, error)
}

type DeleteOp struct {
	Type  models.EntityType
	Owner string
	ID    string
}

// Create persists a new record under a temporary id and tries to create it on
// the server. The returned error is non-nil only when nothing was written.
func Create[T any](ctx context.Context, r *Runner, op CreateOp[T]) (Result[T], error) {
	var res Result[T]
	if op.Owner == "" {
		return res, common.ErrNotAuthenticated
	}
	ent, err := r.entity(op.Type)
	if err != nil {
		return res, err
	}

	id := tempid.Generate()
	unlock, err := r.Lock(ctx, op.Type, id)
	if err != nil {
		return res, err
	}
	defer unlock()

	now := r.now()
	rec := &records.Record{EntityType: op.Type, ID: id, OwnerID: op.Owner, CreatedAt: now, UpdatedAt: now}
	var entry queue.Entry

	err = r.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		payload, sortKey, err := op.Build(ctx, tx)
		if err != nil {
			return err
		}
		rec.Payload, rec.SortKey = payload, sortKey
		if err := tx.Records(op.Type).Insert(ctx, rec); err != nil {
			return err
		}

		entry = queue.Entry{
			EntityType: op.Type,
			EntityID:   id,
			OwnerID:    op.Owner,
			Kind:       queue.KindCreate,
			Payload:    payload,
			EnqueuedAt: now,
		}
		return syncqueue.EnqueueTx(ctx, tx, entry, nil)
	})
	if err != nil {
		return res, localError("create "+string(op.Type), err)
	}

	return finish(ctx, r, ent, entry, rec, op.View)
}

// Update changes a record locally, marks it dirty and tries to update it on
// the server. A record whose create is still queued is not sent: its queued
// create takes the new payload instead.
func Update[T any](ctx context.Context, r *Runner, op UpdateOp[T]) (Result[T], error) {
	var res Result[T]
	if op.Owner == "" {
		return res, common.ErrNotAuthenticated
	}
	ent, err := r.entity(op.Type)
	if err != nil {
		return res, err
	}

	id, unlock, err := r.lockEntity(ctx, op.Type, op.ID)
	if err != nil {
		return res, err
	}
	defer unlock()

	var (
		rec   *records.Record
		entry queue.Entry
	)
	err = r.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		repo := tx.Records(op.Type)
		cur, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.OwnerID != op.Owner {
			return fmt.Errorf("%w: %s[%s]", common.ErrRecordNotFound, op.Type, id)
		}

		payload, sortKey, err := op.Mutate(ctx, tx, cur)
		if err != nil {
			return err
		}
		cur.Payload, cur.SortKey = payload, sortKey
		cur.UpdatedAt = r.now()
		cur.SyncedAt = nil
		if err := repo.Update(ctx, cur); err != nil {
			return err
		}
		rec = cur

		entry = queue.Entry{
			EntityType: op.Type,
			EntityID:   id,
			OwnerID:    op.Owner,
			Kind:       queue.KindUpdate,
			Payload:    payload,
			EnqueuedAt: cur.UpdatedAt,
		}
		return syncqueue.EnqueueTx(ctx, tx, entry, nil)
	})
	if err != nil {
		return res, localError("update "+string(op.Type), err)
	}

	if tempid.IsTemp(id) {
		res.Outcome = Queued
		res.Value, err = op.View(rec)
		return res, err
	}
	return finish(ctx, r, ent, entry, rec, op.View)
}

// Delete soft-deletes a record and tries to delete it on the server. The
// record is purged once the server confirmed, or already had no such record.
func Delete(ctx context.Context, r *Runner, op DeleteOp) (Result[struct{}], error) {
	var res Result[struct{}]
	if op.Owner == "" {
		return res, common.ErrNotAuthenticated
	}
	ent, err := r.entity(op.Type)
	if err != nil {
		return res, err
	}

	id, unlock, err := r.lockEntity(ctx, op.Type, op.ID)
	if err != nil {
		return res, err
	}
	defer unlock()

	var entry queue.Entry
	err = r.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		repo := tx.Records(op.Type)
		cur, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.OwnerID != op.Owner {
			return fmt.Errorf("%w: %s[%s]", common.ErrRecordNotFound, op.Type, id)
		}

		now := r.now()
		if err := repo.SoftDelete(ctx, id, now); err != nil {
			return err
		}
		entry = queue.Entry{
			EntityType: op.Type,
			EntityID:   id,
			OwnerID:    op.Owner,
			Kind:       queue.KindDelete,
			EnqueuedAt: now,
		}
		return syncqueue.EnqueueTx(ctx, tx, entry, nil)
	})
	if err != nil {
		return res, localError("delete "+string(op.Type), err)
	}

	return finish(ctx, r, ent, entry, nil, func(*records.Record) (struct{}, error) { return struct{}{}, nil })
}

// finish pushes the committed entry and builds the result. local is what the
// caller sees when the push did not reconcile anything.
func finish[T any](ctx context.Context, r *Runner, ent Entity, e queue.Entry, local *records.Record,
	view func(*records.Record) (T, error)) (Result[T], error) {
	res := Result[T]{Outcome: Synced}

	synced, err := r.push(ctx, ent, e)
	switch {
	case err == nil:
		if synced != nil {
			local = synced
		}
	case remote.IsRejected(err):
		res.Outcome = Rejected
		res.RemoteErr = err
	default:
		res.Outcome = Queued
		res.RemoteErr = err
	}

	v, err := view(local)
	if err != nil {
		return res, fmt.Errorf("failed to build %s view: %w", e.EntityType, err)
	}
	res.Value = v
	return res, nil
}
