package models

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func ValidateUsername(v string) error {
	if !usernamePattern.MatchString(v) {
		return invalid("username must match %s", usernamePattern)
	}
	return nil
}

func ValidateEmail(v string) error {
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return invalid("email %q is not a valid address", v)
	}
	return nil
}

func ValidatePassword(pw []byte) error {
	if len(pw) < MinPasswordLen || len(pw) > MaxPasswordLen {
		return invalid("password must be %d-%d bytes", MinPasswordLen, MaxPasswordLen)
	}
	return nil
}
