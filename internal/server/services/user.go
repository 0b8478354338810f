// Package services contains server-side business logic: account
// registration and token issuing (UserService) and profile reads and
// partial updates (ProfileService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/cryptox"
	"github.com/dmitrijs2005/skinkeeper/internal/dbx"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"github.com/dmitrijs2005/skinkeeper/internal/server/auth"
	"github.com/dmitrijs2005/skinkeeper/internal/server/config"
	"github.com/dmitrijs2005/skinkeeper/internal/server/repositories/repomanager"
)

// LoginResult is what a successful Login hands back to the transport.
type LoginResult struct {
	models.TokenPair
	User *models.User `json:"user"`
}

// UserService handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	passwordParams               cryptox.Params
	logger                       logging.Logger
	now                          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		passwordParams:               cryptox.DefaultParams,
		logger:                       logger.With("module", "users"),
		now:                          time.Now,
	}
}

// Register creates an account. Bad input yields common.ErrorValidation and a
// taken username or email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = models.NormalizeEmail(email)

	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword([]byte(password)); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword([]byte(password), s.passwordParams)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, unavailable("create user", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials against the stored hash. Unknown login and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)

	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same work as a real check.
			_, _ = cryptox.VerifyPassword([]byte(password), s.decoyHash())
			return nil, common.ErrorUnauthorized
		}
		return nil, unavailable("find user", err)
	}

	ok, err := cryptox.VerifyPassword([]byte(password), user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{TokenPair: *pair, User: user}, nil
}

// Refresh redeems refreshToken for a new pair. The old token is consumed in
// the same transaction that stores its replacement. An expired token is
// still consumed and reported as common.ErrRefreshTokenExpired.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var (
		pair    *models.TokenPair
		expired bool
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return unavailable("consume refresh token", err)
		}

		if token.Expires.Before(s.now()) {
			expired = true
			return nil
		}

		pair, err = s.generateTokenPair(ctx, tx, token.UserID)
		return err
	})
	if err != nil {
		if isSentinel(err) {
			return nil, err
		}
		return nil, unavailable("refresh", err)
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}

	return pair, nil
}

// Logout revokes refreshToken. Unknown tokens are ignored.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return unavailable("delete refresh token", err)
	}
	return nil
}

// CurrentUser loads the account an access token was issued for. A token
// whose user is gone is treated as unauthenticated.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, unavailable("find user", err)
	}
	return user, nil
}

// PurgeExpiredTokens removes refresh tokens that can no longer be redeemed.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, unavailable("purge refresh tokens", err)
	}
	return n, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, db dbx.DBTX, userID string) (*models.TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, unavailable("store refresh token", err)
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *UserService) decoyHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = cryptox.HashPassword(common.GenerateRandByteArray(16), s.passwordParams)
	})
	return s.dummyHash
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorBackendUnavailable, op, err)
}

func isSentinel(err error) bool {
	for _, target := range []error{
		common.ErrorNotFound,
		common.ErrorUnauthorized,
		common.ErrorValidation,
		common.ErrorInternal,
		common.ErrorBackendUnavailable,
		common.ErrRefreshTokenExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
