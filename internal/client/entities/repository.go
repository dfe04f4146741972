// Package entities is the generic repository every entity type is built on.
// It turns payload values into runner operations and local reads.
package entities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

// Item is a stored entity as callers see it.
type Item[P any] struct {
	ID        string
	Payload   P
	CreatedAt time.Time
	UpdatedAt time.Time
	// Synced is false while local changes wait for the server.
	Synced bool
}

// PayloadPtr constrains PP to the pointer type of a payload.
type PayloadPtr[P any] interface {
	*P
	models.Payload
}

// Filter bounds list reads by sort key. Empty bounds are open.
type Filter struct {
	From string
	To   string
}

type Repository[P any, PP PayloadPtr[P]] struct {
	typ       models.EntityType
	runner    *runner.Runner
	refresher *refresh.Refresher
}

// New builds the repository of type t and registers t with the runner.
func New[P any, PP PayloadPtr[P]](t models.EntityType, r *runner.Runner, rf *refresh.Refresher) *Repository[P, PP] {
	repo := &Repository[P, PP]{typ: t, runner: r, refresher: rf}
	r.Register(runner.Entity{Type: t, SortKey: repo.sortKey, Prepare: repo.prepare})
	return repo
}

func (r *Repository[P, PP]) Type() models.EntityType { return r.typ }

func (r *Repository[P, PP]) store() *localstore.Store { return r.runner.Store() }

func (r *Repository[P, PP]) sortKey(raw []byte) (string, error) {
	return models.SortKeyOf(r.typ, raw)
}

// prepare points food references at server ids before a payload is sent.
func (r *Repository[P, PP]) prepare(ctx context.Context, resolve runner.Resolver, raw []byte) ([]byte, error) {
	return models.RebindRaw(r.typ, raw, func(id string) (string, error) {
		return resolve(ctx, models.TypeFood, id)
	})
}

// Create stores p as a new record. Derived values are computed from the
// referenced foods before the payload is validated.
func (r *Repository[P, PP]) Create(ctx context.Context, sess session.Session, p P) (runner.Result[Item[P]], error) {
	if err := sess.Validate(); err != nil {
		return runner.Result[Item[P]]{}, err
	}
	return runner.Create(ctx, r.runner, runner.CreateOp[Item[P]]{
		Type:  r.typ,
		Owner: sess.OwnerID,
		Build: func(ctx context.Context, tx *localstore.Tx) ([]byte, string, error) {
			return r.build(ctx, tx, sess.OwnerID, PP(&p))
		},
		View: r.view,
	})
}

// Update applies mutate to the current payload of id. Errors returned by
// mutate abort the update; they should wrap common.ErrInvalidInput.
func (r *Repository[P, PP]) Update(ctx context.Context, sess session.Session, id string, mutate func(p PP) error) (runner.Result[Item[P]], error) {
	if err := sess.Validate(); err != nil {
		return runner.Result[Item[P]]{}, err
	}
	return runner.Update(ctx, r.runner, runner.UpdateOp[Item[P]]{
		Type:  r.typ,
		Owner: sess.OwnerID,
		ID:    id,
		Mutate: func(ctx context.Context, tx *localstore.Tx, cur *records.Record) ([]byte, string, error) {
			var p P
			if err := json.Unmarshal(cur.Payload, &p); err != nil {
				return nil, "", fmt.Errorf("failed to decode %s[%s]: %w", r.typ, cur.ID, err)
			}
			if err := mutate(PP(&p)); err != nil {
				return nil, "", err
			}
			return r.build(ctx, tx, sess.OwnerID, PP(&p))
		},
		View: r.view,
	})
}

func (r *Repository[P, PP]) Delete(ctx context.Context, sess session.Session, id string) (runner.Result[struct{}], error) {
	if err := sess.Validate(); err != nil {
		return runner.Result[struct{}]{}, err
	}
	return runner.Delete(ctx, r.runner, runner.DeleteOp{Type: r.typ, Owner: sess.OwnerID, ID: id})
}

// Get returns a visible record of the owner. A temporary id that was
// swapped meanwhile still finds the record.
func (r *Repository[P, PP]) Get(ctx context.Context, sess session.Session, id string) (Item[P], error) {
	if err := sess.Validate(); err != nil {
		return Item[P]{}, err
	}
	resolved, err := r.store().Resolve(ctx, r.typ, id)
	if err != nil {
		return Item[P]{}, err
	}
	rec, err := r.store().Records(r.typ).GetByID(ctx, resolved)
	if err != nil {
		return Item[P]{}, err
	}
	if rec.OwnerID != sess.OwnerID {
		return Item[P]{}, fmt.Errorf("%w: %s[%s]", common.ErrRecordNotFound, r.typ, id)
	}
	return r.view(rec)
}

// List reads the owner's visible records from the local store only.
func (r *Repository[P, PP]) List(ctx context.Context, sess session.Session, f Filter) ([]Item[P], error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	recs, err := r.store().Records(r.typ).ListByOwner(ctx, sess.OwnerID, records.Filter{From: f.From, To: f.To})
	if err != nil {
		return nil, err
	}
	return r.Decode(recs)
}

// Subscribe streams the owner's records matching f. Use Decode on every
// snapshot.
func (r *Repository[P, PP]) Subscribe(ctx context.Context, sess session.Session, f Filter) (*localstore.Subscription, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return r.store().Watch(ctx, r.typ, sess.OwnerID, records.Filter{From: f.From, To: f.To}), nil
}

// Refresh pulls the server's records matching f in the background. Its
// failure never affects local reads.
func (r *Repository[P, PP]) Refresh(ctx context.Context, sess session.Session, f Filter) *refresh.Task {
	if err := sess.Validate(); err != nil {
		return refresh.Failed(err)
	}
	return r.refresher.Start(ctx, refresh.Request{
		Type:    r.typ,
		OwnerID: sess.OwnerID,
		From:    f.From,
		To:      f.To,
		SortKey: r.sortKey,
	})
}

// Decode turns a snapshot into items.
func (r *Repository[P, PP]) Decode(recs []*records.Record) ([]Item[P], error) {
	out := make([]Item[P], 0, len(recs))
	for _, rec := range recs {
		it, err := r.view(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *Repository[P, PP]) view(rec *records.Record) (Item[P], error) {
	it := Item[P]{ID: rec.ID, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt, Synced: rec.Synced()}
	if err := json.Unmarshal(rec.Payload, &it.Payload); err != nil {
		return Item[P]{}, fmt.Errorf("failed to decode %s[%s]: %w", r.typ, rec.ID, err)
	}
	return it, nil
}

// build resolves references, derives computed values and validates p. It
// returns the encoded payload and its sort key.
func (r *Repository[P, PP]) build(ctx context.Context, tx *localstore.Tx, ownerID string, p PP) ([]byte, string, error) {
	if ref, ok := any(p).(models.Referencing); ok {
		resolved := make(map[string]string)
		for _, id := range ref.References() {
			sid, err := tx.Resolve(ctx, models.TypeFood, id)
			if err != nil {
				return nil, "", err
			}
			resolved[id] = sid
		}
		ref.Rebind(func(id string) string { return resolved[id] })
	}

	if d, ok := any(p).(models.Derivable); ok {
		if err := d.Derive(ctx, foodLookup(tx, ownerID)); err != nil {
			return nil, "", err
		}
	}
	if err := models.Validate(p); err != nil {
		return nil, "", err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", r.typ, err)
	}
	return raw, p.SortKey(), nil
}

// foodLookup reads foods inside tx. A missing, deleted or foreign food is
// common.ErrParentNotFound.
func foodLookup(tx *localstore.Tx, ownerID string) models.FoodLookup {
	return func(ctx context.Context, id string) (*models.Food, error) {
		if id == "" {
			return nil, fmt.Errorf("%w: empty food id", common.ErrParentNotFound)
		}
		rec, err := tx.Read(models.TypeFood).GetByID(ctx, id)
		if errors.Is(err, common.ErrRecordNotFound) || (err == nil && rec.OwnerID != ownerID) {
			return nil, fmt.Errorf("%w: food %s", common.ErrParentNotFound, id)
		}
		if err != nil {
			return nil, err
		}

		var food models.Food
		if err := json.Unmarshal(rec.Payload, &food); err != nil {
			return nil, fmt.Errorf("failed to decode food %s: %w", id, err)
		}
		return &food, nil
	}
}
