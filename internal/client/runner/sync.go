package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/client/syncqueue"
	"github.com/dmitrijs2005/foodlog/internal/client/tempid"
	"github.com/dmitrijs2005/foodlog/internal/common"
)

// Replay sends a queued entry. It is the syncqueue.Replayer of the runner.
func (r *Runner) Replay(ctx context.Context, e queue.Entry) error {
	ent, err := r.entity(e.EntityType)
	if err != nil {
		return err
	}

	unlock, err := r.Lock(ctx, e.EntityType, e.EntityID)
	if err != nil {
		return err
	}
	defer unlock()

	// The entry may have been superseded or resolved while we waited.
	cur, err := r.store.Queue().Get(ctx, e.EntityType, e.EntityID)
	if errors.Is(err, common.ErrRecordNotFound) {
		return syncqueue.ErrSkipped
	}
	if err != nil {
		return err
	}
	if cur.Status != queue.StatusPending {
		return syncqueue.ErrSkipped
	}

	_, err = r.push(ctx, ent, *cur)
	return err
}

// push sends e and, on failure, records the attempt on the queued entry. The
// caller holds the record lock.
func (r *Runner) push(ctx context.Context, ent Entity, e queue.Entry) (*records.Record, error) {
	rec, err := r.send(ctx, ent, e)
	if err == nil {
		return rec, nil
	}

	args := []any{"entity_type", string(e.EntityType), "entity_id", e.EntityID, "kind", string(e.Kind)}
	if errors.Is(err, ErrParentPending) {
		r.logger.Debug(ctx, "waiting for parent", append(args, "error", err.Error())...)
	} else {
		r.reporter.CaptureException(ctx, err, args...)
	}

	bg := context.WithoutCancel(ctx)
	ferr := r.store.WithTx(bg, func(ctx context.Context, tx *localstore.Tx) error {
		return syncqueue.FailTx(ctx, tx, e, err)
	})
	if ferr != nil {
		r.logger.Error(bg, "failed to record queue attempt", append(args, "error", ferr.Error())...)
	}
	return nil, err
}

// send performs the remote half of e and reconciles the local store. The
// returned record is the synced local record, nil for deletes.
func (r *Runner) send(ctx context.Context, ent Entity, e queue.Entry) (*records.Record, error) {
	payload := e.Payload
	if e.Kind != queue.KindDelete && ent.Prepare != nil {
		p, err := ent.Prepare(ctx, r.resolve, e.Payload)
		switch {
		case err == nil:
			payload = p
		case errors.Is(err, ErrParentPending), errors.Is(err, common.ErrLocalPersistence):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: prepare payload: %w", remote.ErrRejected, err)
		}
	}

	rctx, cancel := context.WithTimeout(ctx, r.remoteTimeout)
	defer cancel()

	var (
		srv *remote.Record
		err error
	)
	switch e.Kind {
	case queue.KindCreate:
		srv, err = r.remote.Create(rctx, e.EntityType, e.EntityID, payload)
	case queue.KindUpdate:
		srv, err = r.remote.Update(rctx, e.EntityType, e.EntityID, payload)
	case queue.KindDelete:
		err = r.remote.Delete(rctx, e.EntityType, e.EntityID)
		if errors.Is(err, remote.ErrNotFound) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown queue kind %q", remote.ErrRejected, e.Kind)
	}
	if err != nil {
		return nil, err
	}

	// The server has the change. Finish locally even if the caller gave up.
	return r.reconcile(context.WithoutCancel(ctx), ent, e, srv)
}

// reconcile applies a confirmed operation to the local store and drops its
// queue entry, all in one transaction.
func (r *Runner) reconcile(ctx context.Context, ent Entity, e queue.Entry, srv *remote.Record) (*records.Record, error) {
	var synced *records.Record

	err := r.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		repo := tx.Records(e.EntityType)

		switch e.Kind {
		case queue.KindCreate, queue.KindUpdate:
			rec, err := r.fromServer(ent, e, srv)
			if err != nil {
				return err
			}
			if e.Kind == queue.KindCreate {
				if err := repo.Swap(ctx, e.EntityID, rec); err != nil {
					return err
				}
				if tempid.IsTemp(e.EntityID) && rec.ID != e.EntityID {
					if err := tx.IDMap().Put(ctx, e.EntityType, e.EntityID, rec.ID); err != nil {
						return err
					}
				}
			} else if err := repo.Upsert(ctx, rec); err != nil {
				return err
			}
			synced = rec
		case queue.KindDelete:
			if err := repo.Purge(ctx, e.EntityID); err != nil {
				return err
			}
		}

		return tx.Queue().Delete(ctx, e.EntityType, e.EntityID)
	})
	if err != nil {
		return nil, common.LocalPersistence("reconcile "+string(e.Kind), err)
	}
	return synced, nil
}

func (r *Runner) fromServer(ent Entity, e queue.Entry, srv *remote.Record) (*records.Record, error) {
	if srv == nil || srv.ID == "" {
		return nil, fmt.Errorf("server returned no record for %s[%s]", e.EntityType, e.EntityID)
	}
	if tempid.IsTemp(srv.ID) {
		return nil, fmt.Errorf("server returned temporary id %q", srv.ID)
	}

	sortKey, err := ent.SortKey(srv.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sort key: %w", err)
	}

	now := r.now()
	return &records.Record{
		EntityType: e.EntityType,
		ID:         srv.ID,
		OwnerID:    e.OwnerID,
		Payload:    srv.Payload,
		SortKey:    sortKey,
		CreatedAt:  srv.CreatedAt,
		UpdatedAt:  srv.UpdatedAt,
		SyncedAt:   &now,
	}, nil
}
