// Package session holds the signed-in account of this device. Repositories
// receive a Session explicitly with every call.
package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/common"
)

type Session struct {
	OwnerID     string
	Username    string
	AccessToken string
}

// Validate returns common.ErrNotAuthenticated unless s names an owner.
func (s Session) Validate() error {
	if s.OwnerID == "" {
		return common.ErrNotAuthenticated
	}
	return nil
}

// Provider returns the current session, or common.ErrNotAuthenticated when
// nobody is signed in.
type Provider interface {
	Current(ctx context.Context) (Session, error)
}

const (
	keyOwnerID     = "session.owner_id"
	keyUsername    = "session.username"
	keyAccessToken = "session.access_token"
)

// Store persists the session in the local metadata table, so it survives
// restarts and the app keeps working offline.
type Store struct {
	store *localstore.Store
}

func NewStore(store *localstore.Store) *Store {
	return &Store{store: store}
}

func (s *Store) Current(ctx context.Context) (Session, error) {
	values, err := s.store.Metadata().GetMany(ctx, keyOwnerID, keyUsername, keyAccessToken)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	sess := Session{
		OwnerID:     string(values[keyOwnerID]),
		Username:    string(values[keyUsername]),
		AccessToken: string(values[keyAccessToken]),
	}
	if err := sess.Validate(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Store) Save(ctx context.Context, sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(ctx context.Context, tx *localstore.Tx) error {
		return tx.Metadata().SetMany(ctx, map[string][]byte{
			keyOwnerID:     []byte(sess.OwnerID),
			keyUsername:    []byte(sess.Username),
			keyAccessToken: []byte(sess.AccessToken),
		})
	})
}

// Clear forgets the session. Local records stay for the next sign-in.
func (s *Store) Clear(ctx context.Context) error {
	return s.store.Metadata().Delete(ctx, keyOwnerID, keyUsername, keyAccessToken)
}

// Token implements remote.TokenSource. Without a session it returns an
// empty token, which sends calls unauthenticated.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, err := s.store.Metadata().Get(ctx, keyAccessToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
