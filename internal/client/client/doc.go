// Package client talks to the SkinKeeper HTTP API on behalf of the CLI.
//
// HTTPClient implements Client. Every identity-bearing call takes the
// access token as an argument; the package keeps no session state.
//
// Failures are classified with sentinels (ErrUnauthorized, ErrNotFound,
// ErrValidation, ErrConflict, ErrUnavailable, ErrUnknownBackend) that
// callers match with errors.Is. Non-2xx responses are returned as *APIError,
// which keeps the status and the server's error body. A cancelled context
// is returned unchanged.
//
// InitDatabase opens the local SQLite state database and applies the
// embedded goose migrations.
package client
