// Package repomanager vends local repositories bound to a DBTX, so the same
// code runs against the database handle or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foodlog/internal/client/repositories/idmap"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Records(db dbx.DBTX, t models.EntityType) records.Repository
	Queue(db dbx.DBTX) queue.Repository
	IDMap(db dbx.DBTX) idmap.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}
