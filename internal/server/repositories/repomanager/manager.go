package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foodlog/internal/dbx"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/idempotency"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	IdempotencyKeys(db dbx.DBTX) idempotency.Repository
}
