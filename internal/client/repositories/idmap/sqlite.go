package idmap

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, t models.EntityType, tempID, serverID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO id_map (entity_type, temp_id, server_id, mapped_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(entity_type, temp_id) DO UPDATE SET server_id = excluded.server_id, mapped_at = excluded.mapped_at
	`, t, tempID, serverID, dbx.Millis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to map %s[%s]: %w", t, tempID, err)
	}
	return nil
}

func (r *SQLiteRepository) Resolve(ctx context.Context, t models.EntityType, tempID string) (string, bool, error) {
	var serverID string
	err := r.db.QueryRowContext(ctx, `SELECT server_id FROM id_map WHERE entity_type = ? AND temp_id = ?`, t, tempID).Scan(&serverID)
	if dbx.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %s[%s]: %w", t, tempID, err)
	}
	return serverID, true, nil
}
