package queue

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const entryColumns = `seq, entity_type, entity_id, owner_id, kind, payload, enqueued_at, attempts, last_error, status`

func (r *SQLiteRepository) Get(ctx context.Context, t models.EntityType, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM sync_queue WHERE entity_type = ? AND entity_id = ?`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, t, id))
	if dbx.IsNoRows(err) {
		return nil, fmt.Errorf("%w: queue entry %s[%s]", common.ErrRecordNotFound, t, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry %s[%s]: %w", t, id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, e Entry) error {
	if e.Status == "" {
		e.Status = StatusPending
	}
	query := `INSERT INTO sync_queue (entity_type, entity_id, owner_id, kind, payload, enqueued_at, attempts, last_error, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			kind = excluded.kind,
			payload = excluded.payload,
			attempts = excluded.attempts,
			last_error = excluded.last_error,
			status = excluded.status`
	_, err := r.db.ExecContext(ctx, query, e.EntityType, e.EntityID, e.OwnerID, e.Kind, e.Payload,
		dbx.Millis(e.EnqueuedAt), e.Attempts, e.LastError, e.Status)
	if err != nil {
		return fmt.Errorf("failed to put queue entry %s[%s]: %w", e.EntityType, e.EntityID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, t models.EntityType, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE entity_type = ? AND entity_id = ?`, t, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry %s[%s]: %w", t, id, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, ownerID string, status Status) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM sync_queue WHERE owner_id = ? AND status = ? ORDER BY enqueued_at, seq`
	rows, err := r.db.QueryContext(ctx, query, ownerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	result := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue row: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, ownerID string) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sync_queue WHERE owner_id = ? GROUP BY status`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}
	defer rows.Close()

	result := map[Status]int{StatusPending: 0, StatusRejected: 0}
	for rows.Next() {
		var (
			status Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan queue count: %w", err)
		}
		result[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue counts: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e          Entry
		enqueuedAt int64
	)
	if err := s.Scan(&e.Seq, &e.EntityType, &e.EntityID, &e.OwnerID, &e.Kind, &e.Payload,
		&enqueuedAt, &e.Attempts, &e.LastError, &e.Status); err != nil {
		return nil, err
	}
	e.EnqueuedAt = dbx.FromMillis(enqueuedAt)
	return &e, nil
}
