// Package models holds the SkinKeeper domain types shared by the server and
// the client: the user record with its skin profile, the partial-update
// Patch, and the stored refresh token.
//
// Validation helpers return errors wrapping common.ErrorValidation so both
// sides can classify them with errors.Is.
package models
