// Package remote is the client of the foodlog server: authentication, record
// create/update/delete/list and photo URLs, all over gRPC.
package remote

import (
	"context"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/models"
)

// Record is a record as the server stores it. IdempotencyKey is the
// temporary id the record was created under, if any.
type Record struct {
	ID             string
	EntityType     models.EntityType
	IdempotencyKey string
	Payload        []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListFilter mirrors the local list filter on the server side.
type ListFilter struct {
	From         string
	To           string
	UpdatedSince *time.Time
}

// Account is the result of a successful register or login.
type Account struct {
	UserID      string
	Username    string
	AccessToken string
}

// TokenSource supplies the access token attached to every call. An empty
// token sends the call unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Service interface {
	Register(ctx context.Context, username, password string) (*Account, error)
	Login(ctx context.Context, username, password string) (*Account, error)
	Ping(ctx context.Context) error

	Create(ctx context.Context, t models.EntityType, idempotencyKey string, payload []byte) (*Record, error)
	Update(ctx context.Context, t models.EntityType, id string, payload []byte) (*Record, error)
	Delete(ctx context.Context, t models.EntityType, id string) error
	List(ctx context.Context, t models.EntityType, f ListFilter) ([]*Record, error)

	PresignPhotoUpload(ctx context.Context) (key, url string, err error)
	PresignPhotoDownload(ctx context.Context, key string) (string, error)

	Close() error
}
