// Package users declares the server-side repository contract for user
// accounts.
package users

import (
	"context"

	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A duplicate username yields
	// common.ErrorLoginAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the user with the given username, or
	// common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
