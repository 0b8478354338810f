// Package envx reads prefixed environment variables, optionally seeded from
// a .env file, for the config loaders.
package envx

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name looked up through this package.
const Prefix = "SKINKEEPER_"

// loadDotenv is a seam for godotenv.Load.
var loadDotenv = godotenv.Load

// LoadDotenv loads variables from the given files (".env" when none) into
// the process environment. Variables that are already set are left alone
// and missing files are ignored.
func LoadDotenv(files ...string) error {
	err := loadDotenv(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(Prefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// String overwrites *dst when the variable is set.
func String(name string, dst *string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// Duration overwrites *dst when the variable holds a Go duration string.
func Duration(name string, dst *time.Duration) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.New(Prefix + name + ": " + err.Error())
	}
	*dst = d
	return nil
}

// Bool overwrites *dst when the variable holds a strconv.ParseBool value.
func Bool(name string, dst *bool) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.New(Prefix + name + ": " + err.Error())
	}
	*dst = b
	return nil
}

// List overwrites *dst with the comma separated, trimmed, non-empty items
// of the variable.
func List(name string, dst *[]string) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	*dst = SplitList(v)
}

// SplitList splits a comma separated value, dropping blank items.
func SplitList(v string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
