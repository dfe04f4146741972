package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, ownerID string, t models.EntityType, key, recordID string) error {

	query :=
		`INSERT INTO idempotency_keys (owner_id, entity_type, key, record_id)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query, ownerID, string(t), key, recordID); err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Lookup(ctx context.Context, ownerID string, t models.EntityType, key string) (string, error) {

	query :=
		`SELECT record_id FROM idempotency_keys
		 WHERE owner_id = $1 AND entity_type = $2 AND key = $3
		 `

	var id string
	err := r.db.QueryRowContext(ctx, query, ownerID, string(t), key).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
