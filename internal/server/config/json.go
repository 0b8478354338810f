package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/flagx"
	"github.com/dmitrijs2005/skinkeeper/internal/timex"
)

// JsonConfig is the DTO read from the JSON config file. Durations use
// timex.Duration so they can be written as "15m" or as nanoseconds.
// Absent keys leave the current value untouched.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	IngredientServiceURL         string         `json:"ingredient_service_url"`
	IngredientServiceKey         string         `json:"ingredient_service_key"`
	IngredientServiceTimeout     timex.Duration `json:"ingredient_service_timeout"`
	RedisURL                     string         `json:"redis_url"`
	IngredientCacheTTL           timex.Duration `json:"ingredient_cache_ttl"`
	AllowedOrigins               []string       `json:"allowed_origins"`
	AuthRateLimit                string         `json:"auth_rate_limit"`
	CompletionPolicy             string         `json:"profile_completion_policy"`
	LogLevel                     string         `json:"log_level"`
	Development                  *bool          `json:"development"`
}

// parseJson overlays config with the file named by -c/-config. It panics
// when the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.IngredientServiceURL, c.IngredientServiceURL)
	setString(&config.IngredientServiceKey, c.IngredientServiceKey)
	setDuration(&config.IngredientServiceTimeout, c.IngredientServiceTimeout)
	setString(&config.RedisURL, c.RedisURL)
	setDuration(&config.IngredientCacheTTL, c.IngredientCacheTTL)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setString(&config.AuthRateLimit, c.AuthRateLimit)
	setString(&config.CompletionPolicy, c.CompletionPolicy)
	setString(&config.LogLevel, c.LogLevel)
	if c.Development != nil {
		config.Development = *c.Development
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
