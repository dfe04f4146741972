// Package services implements the server side of the foodlog protocol:
// accounts, records and photo storage.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/server/auth"
	"github.com/dmitrijs2005/foodlog/internal/server/config"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
	"github.com/dmitrijs2005/foodlog/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful registration or login.
type Session struct {
	UserID      string
	UserName    string
	AccessToken string
}

type userCredentials struct {
	UserName string `validate:"required,min=3,max=64,printascii,excludesrune= "`
	Password string `validate:"required,min=8,max=72"`
}

// bcryptCost is a variable so tests can use the minimum cost.
var bcryptCost = bcrypt.DefaultCost

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates an account and signs it in. A taken name is
// common.ErrorAlreadyExists, a malformed one common.ErrInvalidInput.
func (s *UserService) Register(ctx context.Context, userName, password string) (*Session, error) {
	if err := models.Validate(userCredentials{UserName: userName, Password: password}); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &sm.User{UserName: userName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: user %s", common.ErrorAlreadyExists, userName)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.session(user)
}

// Login checks the password of userName. Unknown users and wrong passwords
// are both common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, userName, password string) (*Session, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.session(user)
}

// Authenticate returns the user id carried by a valid access token.
func (s *UserService) Authenticate(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) session(user *sm.User) (*Session, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &Session{UserID: user.ID, UserName: user.UserName, AccessToken: token}, nil
}
