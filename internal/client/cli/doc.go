// Package cli provides the interactive SkinKeeper command-line client.
//
// NewApp wires the local state database, the HTTP API client, a
// session.Resolver and the services built on them. App.Run restores the
// persisted session, then runs a REPL with the commands register, login,
// logout, whoami, profile, setprofile, ingredients, help and exit.
//
// An unauthenticated session is a normal state, not an error: whoami and
// the profile commands print "not logged in".
package cli
