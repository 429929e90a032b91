// Package config reads process configuration from EQUAIO_* environment
// variables.
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/equaio/internal/logging"
	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration shared by every command.
type Config struct {
	Store      string        `env:"EQUAIO_STORE" envDefault:"file"`
	SessionDir string        `env:"EQUAIO_SESSION_DIR" envDefault:".equaio/sessions"`
	RulesDir   string        `env:"EQUAIO_RULES_DIR"`
	RedisAddr  string        `env:"EQUAIO_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass  string        `env:"EQUAIO_REDIS_PASSWORD"`
	RedisDB    int           `env:"EQUAIO_REDIS_DB" envDefault:"0"`
	RedisTTL   time.Duration `env:"EQUAIO_REDIS_TTL" envDefault:"0s"`
	SQLitePath string        `env:"EQUAIO_SQLITE_PATH" envDefault:".equaio/sessions.db"`
	HTTPAddr   string        `env:"EQUAIO_HTTP_ADDR" envDefault:":8080"`
	LogLevel   string        `env:"EQUAIO_LOG_LEVEL" envDefault:"info"`
	// MaxInputSize bounds one command line or text field, in bytes.
	MaxInputSize int `env:"EQUAIO_MAX_INPUT_SIZE" envDefault:"4096"`

	// StoreKey and StoreFallbackKeys are base64 AES-256 keys. When StoreKey
	// is set every snapshot is encrypted at rest.
	StoreKey          string   `env:"EQUAIO_STORE_KEY"`
	StoreFallbackKeys []string `env:"EQUAIO_STORE_FALLBACK_KEYS" envSeparator:","`
}

// Load parses the environment and validates the result.
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

// Validate checks the values env cannot check by type.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown EQUAIO_STORE %q (want memory, file, redis or sqlite)", c.Store)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("EQUAIO_MAX_INPUT_SIZE must be positive, got %d", c.MaxInputSize)
	}
	if c.RedisTTL < 0 {
		return fmt.Errorf("EQUAIO_REDIS_TTL must not be negative, got %s", c.RedisTTL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("EQUAIO_LOG_LEVEL: %w", err)
	}
	if _, _, err := c.Keys(); err != nil {
		return err
	}
	return nil
}

// Keys decodes the store encryption keys. active is nil when encryption is
// off.
func (c Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.StoreKey == "" {
		if len(c.StoreFallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("EQUAIO_STORE_FALLBACK_KEYS requires EQUAIO_STORE_KEY")
		}
		return nil, nil, nil
	}
	if active, err = decodeKey("EQUAIO_STORE_KEY", c.StoreKey); err != nil {
		return nil, nil, err
	}
	for _, k := range c.StoreFallbackKeys {
		key, err := decodeKey("EQUAIO_STORE_FALLBACK_KEYS", k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(name, value string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
	}
	return key, nil
}

// Level returns the configured log level. Validate guarantees it parses.
func (c Config) Level() slog.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}
