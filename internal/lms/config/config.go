package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the LMS backend connection settings.
type Config struct {
	BaseURL string        `env:"LMS_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout time.Duration `env:"LMS_API_TIMEOUT" envDefault:"10s"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load lms api configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the base URL and strips its trailing slash.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("lms_api_base_url must be an absolute http(s) URL")
	}
	if c.Timeout <= 0 {
		return errors.New("lms_api_timeout must be positive")
	}
	return nil
}
