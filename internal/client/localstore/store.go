// Package localstore is the device-side system of record. It wraps the SQLite
// database, runs multi-repository transactions and notifies watchers after
// every commit that touched an entity type.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/foodlog/internal/client/repositories/idmap"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/foodlog/internal/client/tempid"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"

	_ "modernc.org/sqlite"
)

type Store struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	hub   *hub
}

// Open opens (or creates) the SQLite database at dsn and migrates it.
// SQLite allows one writer, so the pool holds a single connection and
// transactions queue up instead of failing with SQLITE_BUSY.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := New(db, repomanager.NewSQLiteRepositoryManager())
	if err := s.repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already migrated database.
func New(db *sql.DB, repos repomanager.RepositoryManager) *Store {
	return &Store{db: db, repos: repos, hub: newHub()}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Records(t models.EntityType) records.Repository {
	return s.repos.Records(s.db, t)
}

func (s *Store) Queue() queue.Repository {
	return s.repos.Queue(s.db)
}

func (s *Store) IDMap() idmap.Repository {
	return s.repos.IDMap(s.db)
}

func (s *Store) Metadata() metadata.Repository {
	return s.repos.Metadata(s.db)
}

// Resolve maps a temporary id that was already swapped to its server id.
// Any other id is returned unchanged.
func (s *Store) Resolve(ctx context.Context, t models.EntityType, id string) (string, error) {
	return resolve(ctx, s.IDMap(), t, id)
}

// Tx gives access to the repositories inside one transaction. Record
// repositories obtained from it mark their type as changed.
type Tx struct {
	tx    dbx.DBTX
	repos repomanager.RepositoryManager

	mu      sync.Mutex
	touched map[models.EntityType]struct{}
}

func (tx *Tx) Records(t models.EntityType) records.Repository {
	tx.Touch(t)
	return tx.repos.Records(tx.tx, t)
}

// Read returns a records repository for lookups. Unlike Records it does not
// mark t as changed.
func (tx *Tx) Read(t models.EntityType) records.Repository {
	return tx.repos.Records(tx.tx, t)
}

func (tx *Tx) Queue() queue.Repository {
	return tx.repos.Queue(tx.tx)
}

func (tx *Tx) IDMap() idmap.Repository {
	return tx.repos.IDMap(tx.tx)
}

func (tx *Tx) Metadata() metadata.Repository {
	return tx.repos.Metadata(tx.tx)
}

func (tx *Tx) Resolve(ctx context.Context, t models.EntityType, id string) (string, error) {
	return resolve(ctx, tx.IDMap(), t, id)
}

// Touch marks t as changed so watchers re-query after commit.
func (tx *Tx) Touch(t models.EntityType) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.touched[t] = struct{}{}
}

// WithTx runs fn in a transaction. Watchers of every touched type are
// notified once the transaction committed. fn must only use tx: the store
// has a single connection, which the transaction holds.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	ltx := &Tx{repos: s.repos, touched: map[models.EntityType]struct{}{}}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ltx.tx = tx
		return fn(ctx, ltx)
	})
	if err != nil {
		return err
	}

	for t := range ltx.touched {
		s.hub.notify(t)
	}
	return nil
}

func resolve(ctx context.Context, m idmap.Repository, t models.EntityType, id string) (string, error) {
	if !tempid.IsTemp(id) {
		return id, nil
	}
	serverID, ok, err := m.Resolve(ctx, t, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return id, nil
	}
	return serverID, nil
}
