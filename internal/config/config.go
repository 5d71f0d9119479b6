package config

import (
	"fmt"
	"os"
)

// Config holds the converter's runtime settings. Everything here is
// optional and read from the environment; the conversion inputs themselves
// come from the command line.
type Config struct {
	Log    LogConfig
	Update UpdateConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "console" or "json"
}

// UpdateConfig controls the best-effort release check at startup.
type UpdateConfig struct {
	Disabled bool
}

// Load reads configuration from environment variables with sensible
// defaults. NO_ET is the opt-out convention the neuroimaging tooling
// ecosystem uses for phone-home checks, so it is honored unprefixed.
func Load() Config {
	return Config{
		Log: LogConfig{
			Level:  getenv("BIDSPHYSIO_LOG_LEVEL", "info"),
			Format: getenv("BIDSPHYSIO_LOG_FORMAT", "console"),
		},
		Update: UpdateConfig{
			Disabled: os.Getenv("NO_ET") != "",
		},
	}
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("config: unknown log format %q (want console or json)", c.Log.Format)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
