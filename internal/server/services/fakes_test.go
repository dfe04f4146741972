package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/idempotency"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// memDB is an in-memory stand-in for the three server tables.
type memDB struct {
	mu      sync.Mutex
	users   map[string]*sm.User
	records map[string]*sm.Record
	keys    map[string]string

	// hideKeys makes the next n key lookups miss, as if another request
	// had not committed yet.
	hideKeys int
	usersErr error
}

func newMemDB() *memDB {
	return &memDB{users: map[string]*sm.User{}, records: map[string]*sm.Record{}, keys: map[string]string{}}
}

type memManager struct{ db *memDB }

func (m *memManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *memManager) Users(dbx.DBTX) users.Repository                { return (*memUsers)(m.db) }
func (m *memManager) Records(dbx.DBTX) records.Repository            { return (*memRecords)(m.db) }
func (m *memManager) IdempotencyKeys(dbx.DBTX) idempotency.Repository { return (*memKeys)(m.db) }

type memUsers memDB

func (u *memUsers) Create(_ context.Context, user *sm.User) (*sm.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.usersErr != nil {
		return nil, u.usersErr
	}
	if _, ok := u.users[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	cp := *user
	cp.ID = fmt.Sprintf("user-%d", len(u.users)+1)
	cp.CreatedAt = time.Now()
	u.users[user.UserName] = &cp
	return &cp, nil
}

func (u *memUsers) GetUserByLogin(_ context.Context, login string) (*sm.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.usersErr != nil {
		return nil, u.usersErr
	}
	user, ok := u.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *user
	return &cp, nil
}

type memRecords memDB

func (r *memRecords) keyOf(id string) string {
	for k, v := range r.keys {
		if v == id {
			return k[strings.LastIndex(k, "|")+1:]
		}
	}
	return ""
}

func (r *memRecords) Create(_ context.Context, rec *sm.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.Barcode != "" {
		for _, other := range r.records {
			if other.OwnerID == rec.OwnerID && other.Barcode == rec.Barcode {
				return fmt.Errorf("%w: barcode", common.ErrorAlreadyExists)
			}
		}
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	cp := *rec
	cp.IdempotencyKey = ""
	r.records[rec.ID] = &cp
	return nil
}

func (r *memRecords) Get(_ context.Context, ownerID string, t models.EntityType, id string) (*sm.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.OwnerID != ownerID || rec.EntityType != t {
		return nil, common.ErrorNotFound
	}
	cp := *rec
	cp.IdempotencyKey = r.keyOf(id)
	return &cp, nil
}

func (r *memRecords) Update(_ context.Context, rec *sm.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.records[rec.ID]
	if !ok || cur.OwnerID != rec.OwnerID {
		return common.ErrorNotFound
	}
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *memRecords) Delete(_ context.Context, ownerID string, t models.EntityType, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.OwnerID != ownerID || rec.EntityType != t {
		return common.ErrorNotFound
	}
	delete(r.records, id)
	for k, v := range r.keys {
		if v == id {
			delete(r.keys, k)
		}
	}
	return nil
}

func (r *memRecords) List(_ context.Context, ownerID string, t models.EntityType, f sm.RecordFilter) ([]*sm.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sm.Record
	for _, rec := range r.records {
		if rec.OwnerID != ownerID || rec.EntityType != t {
			continue
		}
		if (f.From != "" && rec.SortKey < f.From) || (f.To != "" && rec.SortKey > f.To) {
			continue
		}
		if f.UpdatedSince != nil && !rec.UpdatedAt.After(*f.UpdatedSince) {
			continue
		}
		cp := *rec
		cp.IdempotencyKey = r.keyOf(rec.ID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out, nil
}

type memKeys memDB

func keyID(ownerID string, t models.EntityType, key string) string {
	return ownerID + "|" + string(t) + "|" + key
}

func (k *memKeys) Put(_ context.Context, ownerID string, t models.EntityType, key, recordID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	id := keyID(ownerID, t, key)
	if _, ok := k.keys[id]; ok {
		return common.ErrorAlreadyExists
	}
	k.keys[id] = recordID
	return nil
}

func (k *memKeys) Lookup(_ context.Context, ownerID string, t models.EntityType, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.hideKeys > 0 {
		k.hideKeys--
		return "", common.ErrorNotFound
	}
	id, ok := k.keys[keyID(ownerID, t, key)]
	if !ok {
		return "", common.ErrorNotFound
	}
	return id, nil
}

// newMockDB returns a sqlmock database that accepts any number of
// transactions in any order.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectTx(mock sqlmock.Sqlmock, n int, commit bool) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		if commit {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
	}
}
