// Package profile reads and writes a user's skin profile through the API.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/skinkeeper/internal/client/client"
	"github.com/dmitrijs2005/skinkeeper/internal/client/session"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

// API is the part of the backend client the accessor uses.
type API interface {
	GetProfile(ctx context.Context, accessToken, userID string) (*models.ProfileView, error)
	UpdateProfile(ctx context.Context, accessToken, userID string, patch models.Patch) (*models.User, error)
}

// Invalidator drops the cached identity of a session. *session.Resolver
// satisfies it.
type Invalidator interface {
	Invalidate(key string)
}

// Accessor reads and writes profiles for a session.
type Accessor struct {
	api      API
	sessions Invalidator
	logger   logging.Logger
}

// NewAccessor returns an Accessor that invalidates sessions after writes.
func NewAccessor(api API, sessions Invalidator, logger logging.Logger) *Accessor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Accessor{api: api, sessions: sessions, logger: logger.With("module", "profile")}
}

// ReadProfile returns the profile of userID. Errors match the client
// sentinels; a missing profile is client.ErrNotFound.
func (a *Accessor) ReadProfile(ctx context.Context, s session.Session, userID string) (*models.ProfileView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", client.ErrValidation)
	}
	return a.api.GetProfile(ctx, s.AccessToken, userID)
}

// WriteProfile applies patch to the profile of userID and returns the
// updated user. The patch is normalized and validated before it is sent.
// Once sent, the write is not cancelled by ctx.
func (a *Accessor) WriteProfile(ctx context.Context, s session.Session, userID string, patch models.Patch) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", client.ErrValidation)
	}
	p := patch.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	ctx = context.WithoutCancel(ctx)
	u, err := a.api.UpdateProfile(ctx, s.AccessToken, userID, p)
	if err != nil {
		a.logger.Debug(ctx, "profile write failed", "user_id", userID, "error", err)
		return nil, err
	}

	if a.sessions != nil {
		a.sessions.Invalidate(s.Key)
	}
	a.logger.Debug(ctx, "profile written", "user_id", userID, "completed", u.ProfileCompleted)
	return u, nil
}
