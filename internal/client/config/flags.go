package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the API server
//	-t int      request timeout in seconds
//	-f string   path of the local state database
//	-x int      session cache TTL in seconds (0 disables expiry)
//	-v string   log level
//
// os.Args is filtered with flagx.FilterArgs first.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-f", "-x", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.StateDBPath, "f", cfg.StateDBPath, "local state database")
	ttl := fs.Int("x", int(cfg.SessionCacheTTL.Seconds()), "session cache TTL (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.SessionCacheTTL = time.Duration(*ttl) * time.Second
}
