// Package ingredients proxies product ingredient lookups to an external
// search service, optionally through a Redis cache.
package ingredients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
)

const maxResponseBytes = 4 << 20

// Result is the upstream answer. Ingredient entries are passed through
// untouched.
type Result struct {
	Ingredients []json.RawMessage `json:"ingredients"`
}

// Finder looks up the ingredients of a product by name.
type Finder interface {
	Find(ctx context.Context, productName string) (*Result, error)
}

// NormalizeName is the canonical form of a product name used for requests
// and cache keys.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// HTTPFinder calls POST {baseURL}/find-ingredients on the search service.
type HTTPFinder struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPFinder(baseURL, apiKey string, timeout time.Duration) *HTTPFinder {
	return &HTTPFinder{
		endpoint: strings.TrimRight(baseURL, "/") + "/find-ingredients",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Find returns common.ErrorValidation for a blank name and
// common.ErrorBackendUnavailable for any upstream failure.
func (f *HTTPFinder) Find(ctx context.Context, productName string) (*Result, error) {
	name := NormalizeName(productName)
	if name == "" {
		return nil, fmt.Errorf("%w: productName is required", common.ErrorValidation)
	}

	body, err := json.Marshal(map[string]string{"productName": name})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", common.BearerPrefix+f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: ingredient service: %v", common.ErrorBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: ingredient service returned %d", common.ErrorBackendUnavailable, resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: decode ingredient response: %v", common.ErrorBackendUnavailable, err)
	}
	if res.Ingredients == nil {
		res.Ingredients = []json.RawMessage{}
	}

	return &res, nil
}
