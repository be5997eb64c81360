package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/KyoTung/camera-store-client/pkg/config"
)

// Storage backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Store API
	APIBaseURL string        `env:"STORE_API_BASE_URL" envDefault:"http://localhost:8000/api"`
	APITimeout time.Duration `env:"STORE_API_TIMEOUT" envDefault:"30s"`

	// Local storage backend: "file" or "redis"
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir        string `env:"DATA_DIR" envDefault:".storefront"`

	// Redis (used when STORAGE_BACKEND=redis)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.StorageBackend != BackendFile && c.StorageBackend != BackendRedis {
		return fmt.Errorf("invalid storage backend: %q", c.StorageBackend)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("store API base URL is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("invalid store API timeout: %s", c.APITimeout)
	}
	return nil
}
