package config

import (
	"github.com/dmitrijs2005/skinkeeper/internal/envx"
)

func parseEnv(cfg *Config) {
	if err := envx.LoadDotenv(); err != nil {
		panic(err)
	}

	envx.String("SERVER_URL", &cfg.ServerURL)
	envx.String("STATE_DB", &cfg.StateDBPath)
	envx.String("CLI_LOG_LEVEL", &cfg.LogLevel)
	if err := envx.Duration("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		panic(err)
	}
	if err := envx.Duration("SESSION_CACHE_TTL", &cfg.SessionCacheTTL); err != nil {
		panic(err)
	}
}
