package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foodlog/internal/client/migrations"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/idmap"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db)
}

func (m *SQLiteRepositoryManager) Records(db dbx.DBTX, t models.EntityType) records.Repository {
	return records.NewSQLiteRepository(db, t)
}

func (m *SQLiteRepositoryManager) Queue(db dbx.DBTX) queue.Repository {
	return queue.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) IDMap(db dbx.DBTX) idmap.Repository {
	return idmap.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}
