package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// errKeyTaken reports that a concurrent request bound the idempotency key
// first.
var errKeyTaken = errors.New("idempotency key taken")

// newID is a seam for tests.
var newID = func() string { return uuid.NewString() }

// RecordService stores entity records. Every payload is decoded, has its
// references resolved and its derived values recomputed before it is saved,
// so stored records are always consistent with the foods they point at.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m}
}

// Create stores a new record. A repeated key addresses the record the first
// request with that key created; a payload that changed since is applied to
// it.
func (s *RecordService) Create(ctx context.Context, ownerID string, t models.EntityType, key string, payload []byte) (*sm.Record, error) {
	if key != "" {
		_, err := s.repomanager.IdempotencyKeys(s.db).Lookup(ctx, ownerID, t, key)
		if err == nil {
			return s.replay(ctx, ownerID, t, key, payload)
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}

	var rec *sm.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		raw, sortKey, barcode, err := s.prepare(ctx, tx, ownerID, t, payload)
		if err != nil {
			return err
		}
		rec = &sm.Record{
			ID:             newID(),
			OwnerID:        ownerID,
			EntityType:     t,
			IdempotencyKey: key,
			Payload:        raw,
			SortKey:        sortKey,
			Barcode:        barcode,
		}
		if err := s.repomanager.Records(tx).Create(ctx, rec); err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		if err := s.repomanager.IdempotencyKeys(tx).Put(ctx, ownerID, t, key, rec.ID); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return errKeyTaken
			}
			return err
		}
		return nil
	})

	if errors.Is(err, errKeyTaken) {
		return s.replay(ctx, ownerID, t, key, payload)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces the payload of a record. id may be the idempotency key the
// record was created with.
func (s *RecordService) Update(ctx context.Context, ownerID string, t models.EntityType, id string, payload []byte) (*sm.Record, error) {
	var rec *sm.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := s.lookup(ctx, tx, ownerID, t, id)
		if err != nil {
			return err
		}
		raw, sortKey, barcode, err := s.prepare(ctx, tx, ownerID, t, payload)
		if err != nil {
			return err
		}
		cur.Payload, cur.SortKey, cur.Barcode = raw, sortKey, barcode
		if err := s.repomanager.Records(tx).Update(ctx, cur); err != nil {
			return err
		}
		rec = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record. id may be the idempotency key the record was
// created with.
func (s *RecordService) Delete(ctx context.Context, ownerID string, t models.EntityType, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := s.lookup(ctx, tx, ownerID, t, id)
		if err != nil {
			return err
		}
		return s.repomanager.Records(tx).Delete(ctx, ownerID, t, cur.ID)
	})
}

func (s *RecordService) List(ctx context.Context, ownerID string, t models.EntityType, f sm.RecordFilter) ([]*sm.Record, error) {
	if _, err := models.New(t); err != nil {
		return nil, err
	}
	return s.repomanager.Records(s.db).List(ctx, ownerID, t, f)
}

// replay answers a create whose key is already bound. The client resends a
// create until it sees the reply, folding later edits into it, so the payload
// may be newer than the stored one.
func (s *RecordService) replay(ctx context.Context, ownerID string, t models.EntityType, key string, payload []byte) (*sm.Record, error) {
	var rec *sm.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := s.byKey(ctx, tx, ownerID, t, key)
		if err != nil {
			return err
		}
		raw, sortKey, barcode, err := s.prepare(ctx, tx, ownerID, t, payload)
		if err != nil {
			return err
		}
		rec = cur
		if samePayload(cur.Payload, raw) {
			return nil
		}
		cur.Payload, cur.SortKey, cur.Barcode = raw, sortKey, barcode
		return s.repomanager.Records(tx).Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// samePayload compares two JSON documents ignoring key order and spacing.
func samePayload(a, b []byte) bool {
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}

func (s *RecordService) byKey(ctx context.Context, db dbx.DBTX, ownerID string, t models.EntityType, key string) (*sm.Record, error) {
	id, err := s.repomanager.IdempotencyKeys(db).Lookup(ctx, ownerID, t, key)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Records(db).Get(ctx, ownerID, t, id)
}

// lookup finds a record by id, or by creation key for temporary ids.
func (s *RecordService) lookup(ctx context.Context, db dbx.DBTX, ownerID string, t models.EntityType, id string) (*sm.Record, error) {
	if strings.HasPrefix(id, common.TempIDPrefix) {
		return s.byKey(ctx, db, ownerID, t, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Records(db).Get(ctx, ownerID, t, id)
}

// prepare validates payload against the rules of t and returns the stored
// form with its sort key and barcode.
func (s *RecordService) prepare(ctx context.Context, db dbx.DBTX, ownerID string, t models.EntityType, payload []byte) ([]byte, string, string, error) {
	p, err := models.Decode(t, payload)
	if err != nil {
		return nil, "", "", err
	}

	if ref, ok := p.(models.Referencing); ok {
		var resolveErr error
		ref.Rebind(func(id string) string {
			if resolveErr != nil {
				return id
			}
			rec, err := s.lookup(ctx, db, ownerID, models.TypeFood, id)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					err = fmt.Errorf("%w: food %s", common.ErrParentNotFound, id)
				}
				resolveErr = err
				return id
			}
			return rec.ID
		})
		if resolveErr != nil {
			return nil, "", "", resolveErr
		}
	}

	if d, ok := p.(models.Derivable); ok {
		if err := d.Derive(ctx, s.foodLookup(db, ownerID)); err != nil {
			return nil, "", "", err
		}
	}
	if err := models.Validate(p); err != nil {
		return nil, "", "", err
	}

	var barcode string
	switch v := p.(type) {
	case *models.Food:
		barcode = v.Barcode
		err = checkPhotoKey(ownerID, v.PhotoKey)
	case *models.Recipe:
		err = checkPhotoKey(ownerID, v.PhotoKey)
	}
	if err != nil {
		return nil, "", "", err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: encode %s: %v", common.ErrorInternal, t, err)
	}
	return raw, p.SortKey(), barcode, nil
}

func (s *RecordService) foodLookup(db dbx.DBTX, ownerID string) models.FoodLookup {
	return func(ctx context.Context, id string) (*models.Food, error) {
		rec, err := s.repomanager.Records(db).Get(ctx, ownerID, models.TypeFood, id)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: food %s", common.ErrParentNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		var food models.Food
		if err := json.Unmarshal(rec.Payload, &food); err != nil {
			return nil, fmt.Errorf("%w: decode food %s: %v", common.ErrorInternal, id, err)
		}
		return &food, nil
	}
}
