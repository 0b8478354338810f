// Package services contains application services for the SkinKeeper CLI.
// This file defines the authentication service: register, login, logout,
// and resolving the current user from the session persisted in the local
// state database.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skinkeeper/internal/client/client"
	"github.com/dmitrijs2005/skinkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skinkeeper/internal/client/session"
	"github.com/dmitrijs2005/skinkeeper/internal/dbx"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

// SessionKey is the logical session the CLI resolves identities under.
const SessionKey = "cli"

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new account on the server.
//   - Login: authenticate and persist the token pair locally.
//   - Logout: revoke the refresh token and wipe the local session.
//   - CurrentUser: who is logged in, or nil. An expired access token is
//     renewed once with the stored refresh token.
//   - Session: the persisted session, possibly with an empty token.
//   - Ping: check server liveness.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, login string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	Session(ctx context.Context) (session.Session, error)
	Ping(ctx context.Context) error
}

// Identity resolves and forgets the user behind a session.
// *session.Resolver satisfies it.
type Identity interface {
	CurrentUser(ctx context.Context, s session.Session) (*models.User, error)
	Invalidate(key string)
}

type authService struct {
	client   client.Client
	db       *sql.DB
	identity Identity
	logger   logging.Logger
}

// NewAuthService constructs an AuthService bound to the API client, the
// local state DB and the identity resolver.
func NewAuthService(c client.Client, db *sql.DB, identity Identity, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, db: db, identity: identity, logger: logger.With("module", "auth")}
}

var newMetadataRepo = func(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) (*models.User, error) {
	u, err := a.client.Register(ctx, username, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

func (a *authService) Login(ctx context.Context, login string, password []byte) (*models.User, error) {
	res, err := a.client.Login(ctx, login, string(password))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := a.saveSession(ctx, res.TokenPair, res.User); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.identity.Invalidate(SessionKey)
	return res.User, nil
}

// Logout revokes the stored refresh token on a best-effort basis and always
// clears the local session.
func (a *authService) Logout(ctx context.Context) error {
	repo := newMetadataRepo(a.db)

	refresh, err := repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return err
	}
	if len(refresh) > 0 {
		if err := a.client.Logout(context.WithoutCancel(ctx), string(refresh)); err != nil {
			a.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}

	if err := a.clearSession(ctx); err != nil {
		return err
	}
	a.identity.Invalidate(SessionKey)
	return nil
}

func (a *authService) Session(ctx context.Context) (session.Session, error) {
	token, err := newMetadataRepo(a.db).Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{Key: SessionKey, AccessToken: string(token)}, nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}

	u, err := a.identity.CurrentUser(ctx, s)
	if err != nil || u != nil {
		return u, err
	}

	renewed, err := a.renew(ctx)
	if err != nil || !renewed {
		return nil, err
	}

	s, err = a.Session(ctx)
	if err != nil {
		return nil, err
	}
	return a.identity.CurrentUser(ctx, s)
}

// renew exchanges the stored refresh token for a new pair. It reports
// false when there is nothing to renew or the server rejected the token,
// in which case the local session is cleared.
func (a *authService) renew(ctx context.Context) (bool, error) {
	refresh, err := newMetadataRepo(a.db).Get(ctx, metadata.KeyRefreshToken)
	if err != nil || len(refresh) == 0 {
		return false, err
	}

	pair, err := a.client.Refresh(ctx, string(refresh))
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.logger.Info(ctx, "refresh token rejected, clearing session")
		if err := a.clearSession(ctx); err != nil {
			return false, err
		}
		a.identity.Invalidate(SessionKey)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("refresh: %w", err)
	}

	if err := a.saveSession(ctx, *pair, nil); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	a.identity.Invalidate(SessionKey)
	return true, nil
}

// saveSession stores the token pair, and the user when given, in one
// transaction.
func (a *authService) saveSession(ctx context.Context, pair models.TokenPair, u *models.User) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := newMetadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyAccessToken, []byte(pair.AccessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyRefreshToken, []byte(pair.RefreshToken)); err != nil {
			return err
		}
		if u == nil {
			return nil
		}
		if err := repo.Set(ctx, metadata.KeyUserID, []byte(u.ID)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUsername, []byte(u.Username))
	})
}

func (a *authService) clearSession(ctx context.Context) error {
	return newMetadataRepo(a.db).Delete(ctx,
		metadata.KeyAccessToken, metadata.KeyRefreshToken, metadata.KeyUserID, metadata.KeyUsername)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
