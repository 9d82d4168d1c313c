package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the portal HTTP settings.
type Config struct {
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
	SecurityHeaders bool          `env:"SECURITY_HEADERS" envDefault:"true"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load portal configuration from environment: " + err.Error())
	}
	if cfg.LoginRateLimit <= 0 {
		return nil, errors.New("login_rate_limit must be positive")
	}
	if cfg.LoginRateWindow <= 0 {
		return nil, errors.New("login_rate_window must be positive")
	}
	return cfg, nil
}
