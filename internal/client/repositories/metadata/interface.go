// Package metadata is the CLI's small key/value store. It holds the
// persisted session (refresh token, access token, user id) so a login
// survives restarts.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyAccessToken  = "session.access_token"
	KeyRefreshToken = "session.refresh_token"
	KeyUserID       = "session.user_id"
	KeyUsername     = "session.username"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
