package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/logging"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"github.com/dmitrijs2005/skinkeeper/internal/server/ingredients"
	"github.com/dmitrijs2005/skinkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type ProfileService interface {
	ReadProfile(ctx context.Context, userID string) (*models.ProfileView, error)
	WriteProfile(ctx context.Context, userID string, patch models.Patch) (*models.User, error)
}

type Handler struct {
	users    UserService
	profiles ProfileService
	finder   ingredients.Finder
	logger   logging.Logger
}

func NewHandler(us UserService, ps ProfileService, f ingredients.Finder, l logging.Logger) *Handler {
	return &Handler{users: us, profiles: ps, finder: f, logger: l.With("module", "http_api")}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type findIngredientsRequest struct {
	ProductName string `json:"productName"`
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.users.CurrentUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	recordAuthAttempt("register", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "login and password are required")
		return
	}

	res, err := h.users.Login(r.Context(), req.Login, req.Password)
	recordAuthAttempt("login", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "missing refresh token")
		return
	}

	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	recordAuthAttempt("refresh", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RefreshToken != "" {
		if err := h.users.Logout(r.Context(), req.RefreshToken); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.self(w, r)
	if !ok {
		return
	}

	view, err := h.profiles.ReadProfile(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.self(w, r)
	if !ok {
		return
	}

	var patch models.Patch
	if !h.decode(w, r, &patch) {
		return
	}

	user, err := h.profiles.WriteProfile(r.Context(), userID, patch)
	if err != nil {
		profileWrites.WithLabelValues("error").Inc()
		h.fail(w, r, err)
		return
	}
	profileWrites.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) FindIngredients(w http.ResponseWriter, r *http.Request) {
	var req findIngredientsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "productName is required")
		return
	}

	res, err := h.finder.Find(r.Context(), req.ProductName)
	if err != nil {
		if errors.Is(err, common.ErrorBackendUnavailable) {
			h.logger.Warn(r.Context(), "ingredient lookup failed", "error", err)
			writeErr(w, http.StatusBadGateway, ErrCodeBackendUnavailable, "ingredient service unavailable")
			return
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// self returns the {userID} path parameter if it belongs to the caller.
// Any other id answers 404, the same as an id that does not exist.
func (h *Handler) self(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller, _ := UserIDFromContext(r.Context())
	target := chi.URLParam(r, "userID")
	if target == "" || target != caller {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "profile not found")
		return "", false
	}
	return target, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "request body is empty")
			return false
		}
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, fmt.Sprintf("malformed JSON: %v", err))
		return false
	}
	if dec.More() {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "request body must be a single JSON object")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, errCode, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeErr(w, code, errCode, msg)
}
