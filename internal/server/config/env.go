package config

import (
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/envx"
)

// parseEnv overlays config with SKINKEEPER_* variables, loading .env first.
// It panics on unparsable values, like the other stages.
func parseEnv(config *Config) {
	if err := envx.LoadDotenv(); err != nil {
		panic(err)
	}

	envx.String("HTTP_ADDR", &config.HTTPAddr)
	envx.String("DATABASE_DSN", &config.DatabaseDSN)
	envx.String("SECRET_KEY", &config.SecretKey)
	envx.String("INGREDIENT_SERVICE_URL", &config.IngredientServiceURL)
	envx.String("INGREDIENT_SERVICE_KEY", &config.IngredientServiceKey)
	envx.String("REDIS_URL", &config.RedisURL)
	envx.List("ALLOWED_ORIGINS", &config.AllowedOrigins)
	envx.String("AUTH_RATE_LIMIT", &config.AuthRateLimit)
	envx.String("PROFILE_COMPLETION_POLICY", &config.CompletionPolicy)
	envx.String("LOG_LEVEL", &config.LogLevel)

	for name, dst := range map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY":      &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_VALIDITY":     &config.RefreshTokenValidityDuration,
		"INGREDIENT_SERVICE_TIMEOUT": &config.IngredientServiceTimeout,
		"INGREDIENT_CACHE_TTL":       &config.IngredientCacheTTL,
	} {
		if err := envx.Duration(name, dst); err != nil {
			panic(err)
		}
	}
	if err := envx.Bool("DEVELOPMENT", &config.Development); err != nil {
		panic(err)
	}
}
