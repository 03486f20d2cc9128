package config

import (
	"errors"
	"os"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	LogLevel    string
	// SnapshotDatabaseURL enables the optional Postgres snapshot archive
	// when set.
	SnapshotDatabaseURL string
}

// Load loads configuration from environment variables. Every key has a
// development default; the engine must stay runnable as a plain CLI.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:         os.Getenv("APP_ENV"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		SnapshotDatabaseURL: os.Getenv("SNAPSHOT_DATABASE_URL"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if c.SnapshotDatabaseURL != "" && !isPostgresURL(c.SnapshotDatabaseURL) {
		return errors.New("SNAPSHOT_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	return nil
}

func isPostgresURL(val string) bool {
	prefixes := []string{"postgres://", "postgresql://"}
	for _, p := range prefixes {
		if strings.HasPrefix(val, p) {
			return true
		}
	}
	return false
}
