// Package refresh pulls server state into the local store in the
// background when a list is read.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Lister interface {
	List(ctx context.Context, t models.EntityType, f remote.ListFilter) ([]*remote.Record, error)
}

// Request selects what to refresh. SortKey computes the local sort key of a
// server payload.
type Request struct {
	Type    models.EntityType
	OwnerID string
	From    string
	To      string
	SortKey func(payload []byte) (string, error)
}

func (r Request) key() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.Type, r.OwnerID, r.From, r.To)
}

// Stats describes what a refresh changed locally.
type Stats struct {
	Written int
	Kept    int
	Purged  int
}

type Refresher struct {
	store    *localstore.Store
	remote   Lister
	logger   logging.Logger
	reporter logging.Reporter
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]*Task
	wg       sync.WaitGroup
}

const defaultTimeout = 30 * time.Second

// New returns a Refresher whose list calls are bounded by timeout, or by a
// default when timeout is not positive.
func New(store *localstore.Store, rem Lister, logger logging.Logger, reporter logging.Reporter, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Refresher{
		store:    store,
		remote:   rem,
		logger:   logger.With("component", "refresh"),
		reporter: reporter,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
		inflight: make(map[string]*Task),
	}
}

// Start refreshes req in the background. A refresh of the same selection
// that is still running is returned instead of starting another one. The
// task outlives ctx; only its values are kept.
func (r *Refresher) Start(ctx context.Context, req Request) *Task {
	key := req.key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.inflight[key]; ok {
		return t
	}

	tctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := newTask(cancel)
	r.inflight[key] = t
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer cancel()

		_, err := r.Run(tctx, req)

		r.mu.Lock()
		delete(r.inflight, key)
		r.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			r.reporter.CaptureException(tctx, err, "entity_type", string(req.Type), "component", "refresh")
		}
		t.finish(err)
	}()
	return t
}

// Shutdown cancels running refreshes and waits for them.
func (r *Refresher) Shutdown() {
	r.mu.Lock()
	for _, t := range r.inflight {
		t.Cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Run refreshes req synchronously.
//
// Server records overwrite local ones unless the local copy has unsynced
// changes, is soft-deleted, or is newer than the listed version: a record
// the runner confirmed after the listing started carries state the listing
// may not have seen. Synced local records the server no longer has
// are purged, but only when they were synced before the listing started, so
// a record confirmed during the refresh is not lost.
func (r *Refresher) Run(ctx context.Context, req Request) (Stats, error) {
	var st Stats
	if req.OwnerID == "" {
		return st, common.ErrNotAuthenticated
	}

	started := r.now()
	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	list, err := r.remote.List(lctx, req.Type, remote.ListFilter{From: req.From, To: req.To})
	cancel()
	if err != nil {
		return st, fmt.Errorf("failed to list %s: %w", req.Type, err)
	}

	err = r.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		repo := tx.Records(req.Type)
		seen := make(map[string]struct{}, len(list))

		for _, srv := range list {
			seen[srv.ID] = struct{}{}
			written, err := r.apply(ctx, tx, repo, req, srv, started)
			if err != nil {
				return err
			}
			if written {
				st.Written++
			} else {
				st.Kept++
			}
		}

		local, err := repo.ListByOwner(ctx, req.OwnerID, records.Filter{From: req.From, To: req.To, OnlySynced: true})
		if err != nil {
			return err
		}
		for _, rec := range local {
			if _, ok := seen[rec.ID]; ok || !rec.SyncedAt.Before(started) {
				continue
			}
			queued, err := hasQueued(ctx, tx, req.Type, rec.ID)
			if err != nil {
				return err
			}
			if queued {
				continue
			}
			if err := repo.Purge(ctx, rec.ID); err != nil {
				return err
			}
			st.Purged++
		}
		return nil
	})
	if err != nil {
		return st, common.LocalPersistence("apply refresh", err)
	}

	r.logger.Debug(ctx, "refresh applied", "entity_type", string(req.Type),
		"written", st.Written, "kept", st.Kept, "purged", st.Purged)
	return st, nil
}

func (r *Refresher) apply(ctx context.Context, tx *localstore.Tx, repo records.Repository, req Request, srv *remote.Record, started time.Time) (bool, error) {
	// Created by this device but not swapped yet: the queued create will
	// do the swap.
	if srv.IdempotencyKey != "" {
		if _, err := repo.GetAnyByID(ctx, srv.IdempotencyKey); err == nil {
			return false, nil
		} else if !errors.Is(err, common.ErrRecordNotFound) {
			return false, err
		}
	}

	cur, err := repo.GetAnyByID(ctx, srv.ID)
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
	case err != nil:
		return false, err
	case !cur.Synced() || cur.Deleted() || cur.OwnerID != req.OwnerID:
		return false, nil
	case cur.UpdatedAt.After(srv.UpdatedAt) || !cur.SyncedAt.Before(started):
		return false, nil
	}

	sortKey, err := req.SortKey(srv.Payload)
	if err != nil {
		return false, err
	}
	now := r.now()
	return true, repo.Upsert(ctx, &records.Record{
		ID:        srv.ID,
		OwnerID:   req.OwnerID,
		Payload:   srv.Payload,
		SortKey:   sortKey,
		CreatedAt: srv.CreatedAt,
		UpdatedAt: srv.UpdatedAt,
		SyncedAt:  &now,
	})
}

func hasQueued(ctx context.Context, tx *localstore.Tx, t models.EntityType, id string) (bool, error) {
	_, err := tx.Queue().Get(ctx, t, id)
	if errors.Is(err, common.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
