package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db         dbx.DBTX
	entityType models.EntityType
}

// NewSQLiteRepository returns a repository for records of type t bound to db.
func NewSQLiteRepository(db dbx.DBTX, t models.EntityType) *SQLiteRepository {
	return &SQLiteRepository{db: db, entityType: t}
}

const selectColumns = `id, owner_id, payload, sort_key, created_at, updated_at, synced_at, deleted_at`

func (r *SQLiteRepository) Insert(ctx context.Context, rec *Record) error {
	query := `INSERT INTO records (entity_type, id, owner_id, payload, sort_key, created_at, updated_at, synced_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, r.entityType, rec.ID, rec.OwnerID, rec.Payload, rec.SortKey,
		dbx.Millis(rec.CreatedAt), dbx.Millis(rec.UpdatedAt), dbx.NullMillis(rec.SyncedAt), dbx.NullMillis(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to insert %s[%s]: %w", r.entityType, rec.ID, err)
	}
	rec.EntityType = r.entityType
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec *Record) error {
	query := `UPDATE records SET payload = ?, sort_key = ?, updated_at = ?, synced_at = ?, deleted_at = ?
		WHERE entity_type = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, query, rec.Payload, rec.SortKey, dbx.Millis(rec.UpdatedAt),
		dbx.NullMillis(rec.SyncedAt), dbx.NullMillis(rec.DeletedAt), r.entityType, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update %s[%s]: %w", r.entityType, rec.ID, err)
	}
	return expectOne(res, r.entityType, rec.ID)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *Record) error {
	query := `INSERT INTO records (entity_type, id, owner_id, payload, sort_key, created_at, updated_at, synced_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, id) DO UPDATE SET
			payload = excluded.payload,
			sort_key = excluded.sort_key,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at,
			deleted_at = excluded.deleted_at`
	_, err := r.db.ExecContext(ctx, query, r.entityType, rec.ID, rec.OwnerID, rec.Payload, rec.SortKey,
		dbx.Millis(rec.CreatedAt), dbx.Millis(rec.UpdatedAt), dbx.NullMillis(rec.SyncedAt), dbx.NullMillis(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert %s[%s]: %w", r.entityType, rec.ID, err)
	}
	rec.EntityType = r.entityType
	return nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE records SET deleted_at = ?, updated_at = ?, synced_at = NULL
		WHERE entity_type = ? AND id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, dbx.Millis(at), dbx.Millis(at), r.entityType, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete %s[%s]: %w", r.entityType, id, err)
	}
	return expectOne(res, r.entityType, id)
}

// Purge is idempotent: removing an absent record is not an error.
func (r *SQLiteRepository) Purge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE entity_type = ? AND id = ?`, r.entityType, id)
	if err != nil {
		return fmt.Errorf("failed to purge %s[%s]: %w", r.entityType, id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	return r.get(ctx, id, false)
}

func (r *SQLiteRepository) GetAnyByID(ctx context.Context, id string) (*Record, error) {
	return r.get(ctx, id, true)
}

func (r *SQLiteRepository) get(ctx context.Context, id string, includeDeleted bool) (*Record, error) {
	query := `SELECT ` + selectColumns + ` FROM records WHERE entity_type = ? AND id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	rec, err := r.scan(r.db.QueryRowContext(ctx, query, r.entityType, id))
	if dbx.IsNoRows(err) {
		return nil, fmt.Errorf("%w: %s[%s]", common.ErrRecordNotFound, r.entityType, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", r.entityType, id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string, f Filter) ([]*Record, error) {
	var (
		where = []string{"entity_type = ?", "owner_id = ?"}
		args  = []any{r.entityType, ownerID}
	)
	if !f.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if f.OnlySynced {
		where = append(where, "synced_at IS NOT NULL")
	}
	if f.From != "" {
		where = append(where, "sort_key >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "sort_key <= ?")
		args = append(args, f.To)
	}

	query := `SELECT ` + selectColumns + ` FROM records WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY sort_key, created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.entityType, err)
	}
	defer rows.Close()

	result := make([]*Record, 0)
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.entityType, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.entityType, err)
	}
	return result, nil
}

func (r *SQLiteRepository) Swap(ctx context.Context, oldID string, rec *Record) error {
	if err := r.Purge(ctx, oldID); err != nil {
		return err
	}
	return r.Upsert(ctx, rec)
}

func (r *SQLiteRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM records
		WHERE entity_type = ? AND deleted_at IS NOT NULL AND deleted_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM sync_queue q WHERE q.entity_type = records.entity_type AND q.entity_id = records.id
		)`
	res, err := r.db.ExecContext(ctx, query, r.entityType, dbx.Millis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted %s: %w", r.entityType, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scan(s scanner) (*Record, error) {
	rec := &Record{EntityType: r.entityType}
	var created, updated int64
	var synced, deleted sql.NullInt64
	if err := s.Scan(&rec.ID, &rec.OwnerID, &rec.Payload, &rec.SortKey, &created, &updated, &synced, &deleted); err != nil {
		return nil, err
	}
	rec.CreatedAt = dbx.FromMillis(created)
	rec.UpdatedAt = dbx.FromMillis(updated)
	rec.SyncedAt = dbx.FromNullMillis(synced)
	rec.DeletedAt = dbx.FromNullMillis(deleted)
	return rec, nil
}

func expectOne(res sql.Result, t models.EntityType, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: %s[%s]", common.ErrRecordNotFound, t, id)
	}
	return nil
}
