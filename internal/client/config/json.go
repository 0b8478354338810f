package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/skinkeeper/internal/flagx"
	"github.com/dmitrijs2005/skinkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are timex.Duration, so "10s" and integer nanoseconds both work. Absent
// keys leave the current value alone.
type JsonConfig struct {
	ServerURL       string          `json:"server_url"`
	RequestTimeout  timex.Duration  `json:"request_timeout"`
	StateDBPath     string          `json:"state_db_path"`
	SessionCacheTTL *timex.Duration `json:"session_cache_ttl"`
	LogLevel        string          `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config and panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.StateDBPath != "" {
		cfg.StateDBPath = jc.StateDBPath
	}
	if jc.SessionCacheTTL != nil {
		cfg.SessionCacheTTL = jc.SessionCacheTTL.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
