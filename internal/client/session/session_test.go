package session

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	ls, err := localstore.Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ls.Close() })
	return NewStore(ls)
}

func TestStore_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	tok, err := s.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, tok)

	want := Session{OwnerID: "u1", Username: "ann", AccessToken: "jwt"}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "jwt", tok)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Current(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestSave_RequiresOwner(t *testing.T) {
	s := newStore(t)
	require.ErrorIs(t, s.Save(context.Background(), Session{Username: "ann"}), common.ErrNotAuthenticated)
}
