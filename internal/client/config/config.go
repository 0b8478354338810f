package config

import "time"

// Config holds runtime settings for the SkinKeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the SkinKeeper HTTP API.
//   - RequestTimeout: per-request timeout of the HTTP client.
//   - StateDBPath: SQLite file holding the persisted session.
//   - SessionCacheTTL: how long a resolved identity is reused; 0 keeps it
//     until the next login, logout or profile write.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL       string
	RequestTimeout  time.Duration
	StateDBPath     string
	SessionCacheTTL time.Duration
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.StateDBPath = "skinkeeper.db"
	c.SessionCacheTTL = 0
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
