// Package users declares the user repository contract and its in-memory and
// PostgreSQL implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/memoir/internal/server/models"
)

// Repository stores user accounts. Username and email lookups are
// case-insensitive. Implementations return common.ErrorNotFound for missing
// users and common.ErrorAlreadyExists on username or email collisions.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)

	// Delete removes the user together with their memories, categories and
	// refresh tokens.
	Delete(ctx context.Context, id int64) error
}
