package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/client/client"
	"github.com/dmitrijs2005/skinkeeper/internal/client/config"
	"github.com/dmitrijs2005/skinkeeper/internal/client/profile"
	"github.com/dmitrijs2005/skinkeeper/internal/client/services"
	"github.com/dmitrijs2005/skinkeeper/internal/client/session"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

// ProfileAccessor is the part of *profile.Accessor the CLI uses.
type ProfileAccessor interface {
	ReadProfile(ctx context.Context, s session.Session, userID string) (*models.ProfileView, error)
	WriteProfile(ctx context.Context, s session.Session, userID string, patch models.Patch) (*models.User, error)
}

type IngredientFinder interface {
	FindIngredients(ctx context.Context, accessToken, productName string) (*client.IngredientsResult, error)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	profiles    ProfileAccessor
	ingredients IngredientFinder
	db          *sql.DB
	logger      logging.Logger
	user        *models.User
	reader      *bufio.Reader
	out         io.Writer
}

var initDatabase = client.InitDatabase

// NewApp wires the local state database, the API client, the identity
// resolver and the services on top of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	db, err := initDatabase(ctx, c.StateDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	resolver := session.NewResolver(api, c.SessionCacheTTL, logger)

	return &App{
		config:      c,
		authService: services.NewAuthService(api, db, resolver, logger),
		profiles:    profile.NewAccessor(api, resolver, logger),
		ingredients: api,
		db:          db,
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run restores the persisted session and then serves the REPL until the
// user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to SkinKeeper CLI (type 'help' for commands)")

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.authService.Ping(pingCtx); err != nil {
		fmt.Fprintln(a.out, "Warning: server is not reachable:", describe(err))
	}
	cancel()

	if err := a.Whoami(ctx); err != nil {
		a.logger.Debug(ctx, "session restore failed", "error", err)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) status() string {
	if a.user == nil {
		return ""
	}
	return "(" + a.user.Username + ")"
}

// describe renders err for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "not logged in"
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	case errors.Is(err, client.ErrConflict):
		return "already exists"
	case errors.Is(err, client.ErrValidation):
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "invalid input: " + apiErr.Message
		}
		return err.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return err.Error()
	}
}
