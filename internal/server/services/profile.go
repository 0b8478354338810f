package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/dbx"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"github.com/dmitrijs2005/skinkeeper/internal/server/config"
	"github.com/dmitrijs2005/skinkeeper/internal/server/repositories/repomanager"
)

// ProfileService reads and partially updates the skin profile stored on a
// user record.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      models.CompletionPolicy
	logger      logging.Logger
	now         func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		policy:      cfg.Policy(),
		logger:      logger.With("module", "profiles"),
		now:         time.Now,
	}
}

// ReadProfile returns the profile of userID or common.ErrorNotFound.
func (s *ProfileService) ReadProfile(ctx context.Context, userID string) (*models.ProfileView, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, unavailable("read profile", err)
	}
	return user.View(), nil
}

// WriteProfile merges patch into the stored profile under a row lock and
// returns the updated user. The write ignores cancellation of ctx once it
// has been validated.
func (s *ProfileService) WriteProfile(ctx context.Context, userID string, patch models.Patch) (*models.User, error) {
	p := patch.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err := user.CheckExtra(&p); err != nil {
			return err
		}
		user.Apply(&p, s.policy, s.now().UTC())

		if err := repo.UpdateProfile(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		s.logger.Error(ctx, "profile write failed", "user_id", userID, "error", err)
		return nil, unavailable("write profile", err)
	}

	s.logger.Info(ctx, "profile updated", "user_id", userID, "completed", updated.ProfileCompleted)
	return updated, nil
}
