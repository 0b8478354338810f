package client

import (
	"context"

	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

// LoginResult is the body of a successful login.
type LoginResult struct {
	models.TokenPair
	User *models.User `json:"user"`
}

// IngredientsResult is passed through from the server untouched.
type IngredientsResult struct {
	Ingredients []any `json:"ingredients"`
}

// Client is the SkinKeeper API as seen by the CLI. Calls that need an
// identity take the bearer credential explicitly.
type Client interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	GetProfile(ctx context.Context, accessToken, userID string) (*models.ProfileView, error)
	UpdateProfile(ctx context.Context, accessToken, userID string, patch models.Patch) (*models.User, error)
	FindIngredients(ctx context.Context, accessToken, productName string) (*IngredientsResult, error)
	Ping(ctx context.Context) error
}
