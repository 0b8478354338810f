package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
)

type RouterConfig struct {
	Handler        *Handler
	Logger         logging.Logger
	JWTSecret      []byte
	AllowedOrigins []string
	// AuthRateLimit applies per client IP to register/login/refresh ("20-M"). Empty disables.
	AuthRateLimit string
	Development   bool
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	authLimit, err := newIPRateLimiter(cfg.AuthRateLimit)
	if err != nil {
		return nil, fmt.Errorf("auth rate limit %q: %w", cfg.AuthRateLimit, err)
	}
	requireAuth := RequireAuth(cfg.JWTSecret)
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics)
	r.Use(secure.New(secureOptions(cfg.Development)).Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimit)
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
				r.Post("/refresh", h.Refresh)
			})
			r.Post("/logout", h.Logout)
			r.With(requireAuth).Get("/user", h.CurrentUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile/{userID}", h.GetProfile)
			r.Patch("/profile/{userID}", h.PatchProfile)
			r.Post("/find-ingredients", h.FindIngredients)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, ErrCodeInvalidRequest, "method not allowed")
	})

	return r, nil
}
