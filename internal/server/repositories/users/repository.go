// Package users stores foodlog accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/server/models"
)

type Repository interface {
	// Create inserts user and returns it with the generated id and creation
	// time. A taken user name is common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns the account named userName or
	// common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
