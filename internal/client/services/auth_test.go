package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthRemote struct {
	offline  bool
	loginErr error
	pingErr  error

	registered map[string]string
}

var errUnreachable = errors.Join(remote.ErrTransient, remote.ErrUnavailable)

func (f *fakeAuthRemote) Register(_ context.Context, username, password string) (*remote.Account, error) {
	if f.offline {
		return nil, errUnreachable
	}
	if _, ok := f.registered[username]; ok {
		return nil, errors.Join(remote.ErrRejected, remote.ErrConflict)
	}
	f.registered[username] = password
	return &remote.Account{UserID: "id-" + username, Username: username, AccessToken: "tok-" + username}, nil
}

func (f *fakeAuthRemote) Login(_ context.Context, username, password string) (*remote.Account, error) {
	if f.offline {
		return nil, errUnreachable
	}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.registered[username] != password {
		return nil, errors.Join(remote.ErrTransient, remote.ErrUnauthorized)
	}
	return &remote.Account{UserID: "id-" + username, Username: username, AccessToken: "tok2-" + username}, nil
}

func (f *fakeAuthRemote) Ping(context.Context) error { return f.pingErr }

func setup(t *testing.T) (*fakeAuthRemote, AuthService) {
	t.Helper()
	store, err := localstore.Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rem := &fakeAuthRemote{registered: map[string]string{}}
	return rem, NewAuthService(rem, store, session.NewStore(store), logging.Nop{})
}

func TestRegister_SignsIn(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "ann", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, session.Session{OwnerID: "id-ann", Username: "ann", AccessToken: "tok-ann"}, sess)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, cur)

	_, err = svc.Register(ctx, "ann", []byte("pw"))
	require.ErrorIs(t, err, remote.ErrConflict)
}

func TestLogin_OnlineThenOffline(t *testing.T) {
	rem, svc := setup(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "ann", []byte("pw"))
	require.NoError(t, err)

	sess, online, err := svc.Login(ctx, "ann", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, online)
	assert.Equal(t, "tok2-ann", sess.AccessToken)

	rem.offline = true
	sess, online, err = svc.Login(ctx, "ann", []byte("pw"))
	require.NoError(t, err)
	assert.False(t, online)
	assert.Equal(t, "id-ann", sess.OwnerID)

	_, _, err = svc.Login(ctx, "ann", []byte("wrong"))
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "bob", []byte("pw"))
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_OfflineWithoutCache(t *testing.T) {
	rem, svc := setup(t)
	rem.offline = true

	_, _, err := svc.Login(context.Background(), "ann", []byte("pw"))
	require.ErrorIs(t, err, ErrLocalDataNotAvailable)
}

func TestLogin_RefusedIsNotRetriedOffline(t *testing.T) {
	rem, svc := setup(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "ann", []byte("pw"))
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ann", []byte("nope"))
	require.ErrorIs(t, err, remote.ErrUnauthorized)

	rem.loginErr = errors.Join(remote.ErrRejected, errors.New("account locked"))
	_, _, err = svc.Login(ctx, "ann", []byte("pw"))
	require.ErrorContains(t, err, "account locked")
}

func TestLogout(t *testing.T) {
	rem, svc := setup(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "ann", []byte("pw"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Current(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	rem.offline = true
	_, _, err = svc.Login(ctx, "ann", []byte("pw"))
	require.ErrorIs(t, err, ErrLocalDataNotAvailable)
}

func TestPing(t *testing.T) {
	rem, svc := setup(t)
	require.NoError(t, svc.Ping(context.Background()))
	rem.pingErr = errUnreachable
	require.ErrorIs(t, svc.Ping(context.Background()), remote.ErrUnavailable)
}
