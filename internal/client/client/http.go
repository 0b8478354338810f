package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

const maxResponseBytes = 4 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	in := map[string]string{"login": login, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, fmt.Errorf("%w: login response without token or user", ErrUnknownBackend)
	}
	return &out, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var out models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", "", map[string]string{"refreshToken": refreshToken}, nil)
}

// CurrentUser performs the identity read, GET /api/auth/user.
func (c *HTTPClient) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: user without id", ErrUnknownBackend)
	}
	return &out, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, accessToken, userID string) (*models.ProfileView, error) {
	var out models.ProfileView
	if err := c.do(ctx, http.MethodGet, "/api/profile/"+url.PathEscape(userID), accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, accessToken, userID string, patch models.Patch) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPatch, "/api/profile/"+url.PathEscape(userID), accessToken, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FindIngredients(ctx context.Context, accessToken, productName string) (*IngredientsResult, error) {
	var out IngredientsResult
	if err := c.do(ctx, http.MethodPost, "/api/find-ingredients", accessToken, map[string]string{"productName": productName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks GET /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

// do issues one request. in is JSON-encoded when non-nil; a 2xx body is
// decoded into out when out is non-nil. No retries.
func (c *HTTPClient) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", common.BearerPrefix+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.mapTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrUnknownBackend, method, path, err)
	}
	return nil
}

func (c *HTTPClient) mapTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func mapStatus(status int, raw []byte) error {
	apiErr := &APIError{Status: status}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}

// IsAuthError reports whether err means the credential was rejected.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
