// Package httpapi exposes the SkinKeeper services over HTTP/JSON.
//
// Routes:
//
//	GET   /api/auth/user          current user (bearer or access_token cookie)
//	POST  /api/auth/register      create an account
//	POST  /api/auth/login         issue a token pair
//	POST  /api/auth/refresh       rotate a refresh token
//	POST  /api/auth/logout        revoke a refresh token
//	GET   /api/profile/{userID}   read own profile
//	PATCH /api/profile/{userID}   partially update own profile
//	POST  /api/find-ingredients   ingredient lookup by product name
//	GET   /health                 liveness
//	GET   /metrics                Prometheus exposition
//
// Errors are written as {"error": message, "code": code}.
package httpapi
