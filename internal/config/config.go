// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/caarlos0/env/v11"
)

// Backend names an event log implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// Config holds the settings shared by the CLI commands and the server.
type Config struct {
	Backend    Backend `env:"FSMTRAIL_BACKEND" envDefault:"sqlite"`
	SQLitePath string  `env:"FSMTRAIL_SQLITE_PATH" envDefault:"fsmtrail.db"`

	RedisAddr     string `env:"FSMTRAIL_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"FSMTRAIL_REDIS_PASSWORD"`
	RedisDB       int    `env:"FSMTRAIL_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"FSMTRAIL_REDIS_PREFIX" envDefault:"fsmtrail:log:"`

	LogLevel  string `env:"FSMTRAIL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FSMTRAIL_LOG_FORMAT" envDefault:"text"`

	// RedactKeys are regular expressions matched against payload keys.
	RedactKeys []string `env:"FSMTRAIL_REDACT_KEYS" envSeparator:","`
	// EncryptionKey is a base64 encoded 32 byte key. Empty disables encryption.
	EncryptionKey         string   `env:"FSMTRAIL_ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"FSMTRAIL_ENCRYPTION_FALLBACK_KEYS" envSeparator:","`

	HTTPAddr string `env:"FSMTRAIL_HTTP_ADDR" envDefault:":8080"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("sqlite backend requires FSMTRAIL_SQLITE_PATH"))
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			errs = append(errs, errors.New("redis backend requires FSMTRAIL_REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want memory, sqlite or redis)", c.Backend))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() slog.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
