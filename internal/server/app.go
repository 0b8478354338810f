// Package server wires the SkinKeeper backend together: storage and
// migrations, services, the ingredient gateway and the HTTP API, with
// graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/server/config"
	"github.com/dmitrijs2005/skinkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/skinkeeper/internal/server/ingredients"
	"github.com/dmitrijs2005/skinkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skinkeeper/internal/server/services"
)

const (
	dbConnectTimeout   = 10 * time.Second
	tokenPurgeInterval = time.Hour
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	closers        []io.Closer
	userService    *services.UserService
	profileService *services.ProfileService
	finder         ingredients.Finder
}

// Seams for tests.
var (
	openDB        = repomanager.Open
	connectRedis  = ingredients.Connect
	runMigrations = func(ctx context.Context, db *sql.DB) error {
		return repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db)
	}
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel).With("service", "skinkeeper")

	db, err := openDB(ctx, c.DatabaseDSN, dbConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	app := &App{
		config:         c,
		logger:         logger,
		closers:        []io.Closer{db},
		userService:    services.NewUserService(db, rm, c, logger),
		profileService: services.NewProfileService(db, rm, c, logger),
	}

	finder, err := app.buildFinder(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.finder = finder

	return app, nil
}

func (app *App) buildFinder(ctx context.Context) (ingredients.Finder, error) {
	var finder ingredients.Finder = ingredients.NewHTTPFinder(
		app.config.IngredientServiceURL,
		app.config.IngredientServiceKey,
		app.config.IngredientServiceTimeout,
	)
	if app.config.RedisURL == "" {
		return finder, nil
	}

	client, err := connectRedis(ctx, app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client)

	return ingredients.NewCachedFinder(finder, ingredients.NewRedisCache(client), app.config.IngredientCacheTTL, app.logger), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.userService, app.profileService, app.finder, app.logger)

	router, err := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:        h,
		Logger:         app.logger,
		JWTSecret:      []byte(app.config.SecretKey),
		AllowedOrigins: app.config.AllowedOrigins,
		AuthRateLimit:  app.config.AuthRateLimit,
		Development:    app.config.Development,
	})
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := httpapi.NewServer(app.config.HTTPAddr, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// runTokenJanitor removes expired refresh tokens every interval until ctx is done.
func runTokenJanitor(ctx context.Context, p tokenPurger, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpiredTokens(ctx)
			if err != nil {
				logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "purged expired refresh tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		runTokenJanitor(ctx, app.userService, tokenPurgeInterval, app.logger)
	}()

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database and cache connections.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
