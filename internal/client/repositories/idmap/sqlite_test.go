package idmap

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/migrations"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func TestPutAndResolve(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, ok, err := r.Resolve(ctx, models.TypeFood, "tmp_1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.Put(ctx, models.TypeFood, "tmp_1", "food_42"))

	id, ok, err := r.Resolve(ctx, models.TypeFood, "tmp_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "food_42", id)

	_, ok, err = r.Resolve(ctx, models.TypeRecipe, "tmp_1")
	require.NoError(t, err)
	require.False(t, ok, "mappings are scoped by entity type")

	require.NoError(t, r.Put(ctx, models.TypeFood, "tmp_1", "food_43"))
	id, _, err = r.Resolve(ctx, models.TypeFood, "tmp_1")
	require.NoError(t, err)
	require.Equal(t, "food_43", id)
}

func TestResolve_DBError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, _, err := r.Resolve(context.Background(), models.TypeFood, "tmp_1")
	require.ErrorContains(t, err, "failed to resolve food[tmp_1]")
}
