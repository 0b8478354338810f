package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
)

const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeValidation         = "validation_error"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeBackendUnavailable = "backend_unavailable"
	ErrCodeInternal           = "internal"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr sends {"error": message, "code": errCode}.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	writeJSON(w, code, errorBody{Error: message, Code: errCode})
}

// statusFor maps a service error to its HTTP status, error code and a
// message safe to show to clients.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, ErrCodeUnauthorized, err.Error()
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, ErrCodeForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, ErrCodeConflict, "username or email already registered"
	case errors.Is(err, common.ErrorBackendUnavailable):
		return http.StatusServiceUnavailable, ErrCodeBackendUnavailable, "backend unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal error"
	}
}
