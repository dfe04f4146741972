// Package services contains application services for the foodlog client.
// This file defines the authentication service: online login with an offline
// fallback, register, logout and the liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// ErrLocalDataNotAvailable is returned by an offline login on a device that
// never signed in online.
var ErrLocalDataNotAvailable = errors.New("no offline credentials on this device")

// ErrInvalidCredentials is returned when an offline login does not match the
// credentials cached on the last online login.
var ErrInvalidCredentials = errors.New("invalid username or password")

const (
	keyVerifierUser = "auth.username"
	keyVerifier     = "auth.verifier"
)

// AuthRemote is the part of the server API the auth service calls.
type AuthRemote interface {
	Register(ctx context.Context, username, password string) (*remote.Account, error)
	Login(ctx context.Context, username, password string) (*remote.Account, error)
	Ping(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, falling back to the cached
//     credentials when the server is unreachable.
//   - Register: create an account on the server and sign in.
//   - Logout: forget the session and cached credentials. Local records stay.
//   - Current: the signed-in session.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) (session.Session, error)
	Login(ctx context.Context, username string, password []byte) (session.Session, bool, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (session.Session, error)
	Ping(ctx context.Context) error
}

type authService struct {
	remote   AuthRemote
	store    *localstore.Store
	sessions *session.Store
	logger   logging.Logger
}

func NewAuthService(rem AuthRemote, store *localstore.Store, sessions *session.Store, logger logging.Logger) AuthService {
	return &authService{remote: rem, store: store, sessions: sessions, logger: logger}
}

func (a *authService) Register(ctx context.Context, username string, password []byte) (session.Session, error) {
	acc, err := a.remote.Register(ctx, username, string(password))
	if err != nil {
		return session.Session{}, fmt.Errorf("register error: %w", err)
	}
	return a.signIn(ctx, acc, password)
}

// Login returns the new session and whether the server confirmed it. An
// offline login reuses the session saved by the last online login.
func (a *authService) Login(ctx context.Context, username string, password []byte) (session.Session, bool, error) {
	acc, err := a.remote.Login(ctx, username, string(password))
	if err == nil {
		sess, err := a.signIn(ctx, acc, password)
		return sess, err == nil, err
	}
	if !errors.Is(err, remote.ErrUnavailable) {
		return session.Session{}, false, fmt.Errorf("login error: %w", err)
	}

	a.logger.Info(ctx, "server unavailable, trying offline login", "username", username)
	sess, err := a.offlineLogin(ctx, username, password)
	if err != nil {
		return session.Session{}, false, err
	}
	return sess, false, nil
}

func (a *authService) offlineLogin(ctx context.Context, username string, password []byte) (session.Session, error) {
	values, err := a.store.Metadata().GetMany(ctx, keyVerifierUser, keyVerifier)
	if err != nil {
		return session.Session{}, err
	}
	verifier := values[keyVerifier]
	if len(verifier) == 0 {
		return session.Session{}, ErrLocalDataNotAvailable
	}
	if string(values[keyVerifierUser]) != username {
		return session.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(verifier, password); err != nil {
		return session.Session{}, ErrInvalidCredentials
	}

	sess, err := a.sessions.Current(ctx)
	if errors.Is(err, common.ErrNotAuthenticated) {
		return session.Session{}, ErrLocalDataNotAvailable
	}
	return sess, err
}

// signIn saves the session and the verifier used by later offline logins.
func (a *authService) signIn(ctx context.Context, acc *remote.Account, password []byte) (session.Session, error) {
	verifier, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	sess := session.Session{OwnerID: acc.UserID, Username: acc.Username, AccessToken: acc.AccessToken}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return session.Session{}, fmt.Errorf("session saving error: %w", err)
	}
	if err := a.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		return tx.Metadata().SetMany(ctx, map[string][]byte{
			keyVerifierUser: []byte(acc.Username),
			keyVerifier:     verifier,
		})
	}); err != nil {
		return session.Session{}, fmt.Errorf("offline data saving error: %w", err)
	}
	return sess, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	return a.store.Metadata().Delete(ctx, keyVerifierUser, keyVerifier)
}

func (a *authService) Current(ctx context.Context) (session.Session, error) {
	return a.sessions.Current(ctx)
}

// Ping proxies a liveness check to the server.
func (a *authService) Ping(ctx context.Context) error {
	return a.remote.Ping(ctx)
}
