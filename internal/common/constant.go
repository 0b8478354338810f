// Package common contains shared constants and sentinel errors used across
// SkinKeeper components.
package common

// AccessTokenCookieName is the cookie consulted when a request carries no
// Authorization header.
const AccessTokenCookieName = "access_token"

// BearerPrefix prefixes the access token in the Authorization header.
const BearerPrefix = "Bearer "
