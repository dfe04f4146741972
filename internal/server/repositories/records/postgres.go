package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
)

const barcodeIndex = "records_owner_barcode_uidx"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapWriteError(err error) error {
	if dbx.IsUniqueViolation(err, barcodeIndex) {
		return fmt.Errorf("%w: barcode is used by another food", common.ErrorAlreadyExists)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, rec *sm.Record) error {

	query :=
		`INSERT INTO records (id, owner_id, entity_type, payload, sort_key, barcode)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.OwnerID, string(rec.EntityType), rec.Payload, rec.SortKey, nullString(rec.Barcode)).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

const selectColumns = `r.id, r.owner_id, r.entity_type, COALESCE(k.key, ''), r.payload, r.sort_key, COALESCE(r.barcode, ''), r.created_at, r.updated_at
		 FROM records r
		 LEFT JOIN idempotency_keys k ON k.record_id = r.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*sm.Record, error) {
	rec := &sm.Record{}
	var t string
	err := s.Scan(&rec.ID, &rec.OwnerID, &t, &rec.IdempotencyKey, &rec.Payload, &rec.SortKey, &rec.Barcode, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.EntityType = models.EntityType(t)
	return rec, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID string, t models.EntityType, id string) (*sm.Record, error) {
	query := `SELECT ` + selectColumns + `
		 WHERE r.owner_id = $1 AND r.entity_type = $2 AND r.id = $3
		 `

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, ownerID, string(t), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *sm.Record) error {

	query :=
		`UPDATE records SET payload = $4, sort_key = $5, barcode = $6, updated_at = now()
		 WHERE owner_id = $1 AND entity_type = $2 AND id = $3
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.OwnerID, string(rec.EntityType), rec.ID, rec.Payload, rec.SortKey, nullString(rec.Barcode)).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return mapWriteError(err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, t models.EntityType, id string) error {

	query :=
		`DELETE FROM records
		 WHERE owner_id = $1 AND entity_type = $2 AND id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, string(t), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, t models.EntityType, f sm.RecordFilter) ([]*sm.Record, error) {
	query := `SELECT ` + selectColumns + `
		 WHERE r.owner_id = $1 AND r.entity_type = $2
		   AND ($3 = '' OR r.sort_key >= $3)
		   AND ($4 = '' OR r.sort_key <= $4)
		   AND ($5::timestamptz IS NULL OR r.updated_at > $5)
		 ORDER BY r.sort_key, r.id
		 `

	var since sql.NullTime
	if f.UpdatedSince != nil {
		since = sql.NullTime{Time: f.UpdatedSince.UTC(), Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, ownerID, string(t), f.From, f.To, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*sm.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
