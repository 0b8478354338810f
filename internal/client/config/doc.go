// Package config loads runtime configuration for the SkinKeeper CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. SKINKEEPER_* environment variables, seeded from .env when present.
//  4. Command-line flags (see parseFlags).
//
// JSON example:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "10s",
//	  "state_db_path": "skinkeeper.db",
//	  "session_cache_ttl": "5m"
//	}
package config
