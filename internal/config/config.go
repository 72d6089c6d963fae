package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every recognized environment variable. Token lifetime is
// deliberately not here: expired tokens require a fresh login, and the
// 24h window is part of the API contract rather than deployment tuning.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	StoreHost           string        `env:"STORE_HOST" envDefault:"localhost"`
	StorePort           int           `env:"STORE_PORT" envDefault:"6379"`
	StoreDB             int           `env:"STORE_DB" envDefault:"0"`
	StoreDialTimeout    time.Duration `env:"STORE_DIAL_TIMEOUT" envDefault:"2s"`
	StoreSocketTimeout  time.Duration `env:"STORE_SOCKET_TIMEOUT" envDefault:"2s"`
	StoreTLS            bool          `env:"STORE_TLS" envDefault:"false"`

	TokenSecret    string `env:"TOKEN_SECRET" envDefault:"dev-only-secret"`
	TokenAlgorithm string `env:"TOKEN_ALGORITHM" envDefault:"HS256"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
