// Package users declares the server-side repository contract for user
// records and implements it over PostgreSQL.
package users

import (
	"context"

	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

// Repository stores users with their skin profile.
//
// Lookups return common.ErrorNotFound when no row matches; Create returns
// common.ErrorAlreadyExists on a duplicate username or email. Other
// failures are wrapped as "db error: ...".
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin matches either the username or the (normalized) email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	// GetForUpdate is GetByID with a row lock; use it inside a transaction.
	GetForUpdate(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile writes the profile columns, profile_completed and
	// updated_at of user.
	UpdateProfile(ctx context.Context, user *models.User) error
}
