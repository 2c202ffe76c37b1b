package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fermata-io/purgatory/internal/adapters/file"
	"github.com/fermata-io/purgatory/internal/adapters/memory"
	"github.com/fermata-io/purgatory/internal/adapters/redis"
	"github.com/fermata-io/purgatory/internal/adapters/sqlite"
	"github.com/fermata-io/purgatory/pkg/persistence/middleware"
	"github.com/fermata-io/purgatory/pkg/ports"
	"gopkg.in/yaml.v3"
)

// EnvEncryptionKey overrides encryption.key from the environment, so the
// key does not have to live in the config file.
const EnvEncryptionKey = "PURGATORY_ENCRYPTION_KEY"

// Config selects the persistence backend and operational settings for the
// purgatory CLI and servers.
type Config struct {
	// Backend is one of: file, redis, sqlite, memory.
	Backend string `yaml:"backend"`

	File struct {
		Path string `yaml:"path"`
	} `yaml:"file"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
	} `yaml:"redis"`

	SQLite struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sqlite"`

	Encryption struct {
		// Key is a base64-encoded 32-byte AES key. Empty disables
		// at-rest encryption.
		Key          string   `yaml:"key"`
		FallbackKeys []string `yaml:"fallback_keys"`
	} `yaml:"encryption"`

	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Backend:  "file",
		Listen:   ":8467",
		LogLevel: "info",
	}
	cfg.File.Path = filepath.Join(".purgatory", "ledger.json")
	cfg.Redis.Addr = "localhost:6379"
	cfg.SQLite.DSN = filepath.Join(".purgatory", "ledger.db")
	return cfg
}

// Load reads a YAML config file, filling unset fields with defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// OpenBackend constructs the configured backend, wrapped in the encryption
// middleware when a key is configured. The returned closer releases any
// held connections and is a no-op for backends without one.
func (c *Config) OpenBackend() (ports.Backend, func() error, error) {
	var (
		backend ports.Backend
		closer  = func() error { return nil }
	)

	switch c.Backend {
	case "", "file":
		backend = file.New(c.File.Path)
	case "memory":
		backend = memory.New()
	case "redis":
		store := redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB, redisOpts(c)...)
		backend = store
		closer = store.Close
	case "sqlite":
		store, err := sqlite.New(c.SQLite.DSN)
		if err != nil {
			return nil, nil, err
		}
		backend = store
		closer = store.Close
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", c.Backend)
	}

	mw, err := c.encryption()
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	if mw != nil {
		backend = mw(backend)
	}

	return backend, closer, nil
}

func redisOpts(c *Config) []redis.Option {
	if c.Redis.Key == "" {
		return nil
	}
	return []redis.Option{redis.WithKey(c.Redis.Key)}
}

func (c *Config) encryption() (middleware.Middleware, error) {
	encoded := c.Encryption.Key
	if env := os.Getenv(EnvEncryptionKey); env != "" {
		encoded = env
	}
	if encoded == "" {
		return nil, nil
	}

	key, err := decodeKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	fallbacks := make([][]byte, 0, len(c.Encryption.FallbackKeys))
	for _, fk := range c.Encryption.FallbackKeys {
		decoded, err := decodeKey(fk)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback key: %w", err)
		}
		fallbacks = append(fallbacks, decoded)
	}

	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    key,
		FallbackKeys: fallbacks,
	}), nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
