package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/migrations"
	"github.com/stretchr/testify/assert"
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

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "owner_id", []byte("u1")))
	require.NoError(t, r.Set(ctx, "owner_id", []byte("u2")))

	v, err := r.Get(ctx, "owner_id")
	require.NoError(t, err)
	assert.Equal(t, []byte("u2"), v)

	v, err = r.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetManyGetManyDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx, map[string][]byte{
		"owner_id":     []byte("u1"),
		"username":     []byte("alice"),
		"access_token": []byte("jwt"),
	}))

	got, err := r.GetMany(ctx, "owner_id", "username", "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"owner_id": []byte("u1"), "username": []byte("alice")}, got)

	require.NoError(t, r.Delete(ctx, "owner_id", "access_token"))
	require.NoError(t, r.Delete(ctx))

	got, err = r.GetMany(ctx, "owner_id", "username", "access_token")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"username": []byte("alice")}, got)

	empty, err := r.GetMany(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata")

	_, err = r.GetMany(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata")
}
