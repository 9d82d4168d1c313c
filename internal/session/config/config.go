package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Supported session storage backends.
const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendMongoDB = "mongodb"
)

// RedisConfig holds the connection settings of the redis session backend.
type RedisConfig struct {
	Host            string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string        `env:"REDIS_PORT" envDefault:"6379"`
	Password        string        `env:"REDIS_PASSWORD" envDefault:""`
	Database        int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool          `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
}

// GetAddr returns host:port.
func (c RedisConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MongoConfig holds the settings of the mongodb session backend.
type MongoConfig struct {
	URI        string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database   string `env:"MONGODB_DATABASE" envDefault:"lms_portal"`
	Collection string `env:"MONGODB_COLLECTION" envDefault:"client_sessions"`
}

// Config holds all configuration for the session module.
type Config struct {
	Backend     string        `env:"SESSION_BACKEND" envDefault:"memory"`
	TTL         time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	ScopePrefix string        `env:"SESSION_KEY_PREFIX" envDefault:"lms:client:"`

	Redis RedisConfig
	Mongo MongoConfig

	// Client cookie
	CookieName     string        `env:"COOKIE_NAME" envDefault:"lms_client"`
	CookiePath     string        `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string        `env:"COOKIE_SAME_SITE" envDefault:"Lax"`
	CookieHashKey  string        `env:"COOKIE_HASH_KEY,required"`
	CookieBlockKey string        `env:"COOKIE_BLOCK_KEY" envDefault:""`
	CookieTTL      time.Duration `env:"CLIENT_COOKIE_TTL" envDefault:"720h"`
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load session configuration from environment: " + err.Error() +
			". Please ensure all required environment variables are set.")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendMemory, BackendRedis, BackendMongoDB:
	default:
		return fmt.Errorf("session_backend must be one of %q, %q or %q, got %q",
			BackendMemory, BackendRedis, BackendMongoDB, c.Backend)
	}

	if c.TTL <= 0 {
		return errors.New("session_ttl must be positive")
	}

	// securecookie accepts 32 or 64 byte hash keys and 16, 24 or 32 byte block keys.
	if n := len(c.CookieHashKey); n != 32 && n != 64 {
		return errors.New("cookie_hash_key must be 32 or 64 bytes long")
	}
	if n := len(c.CookieBlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return errors.New("cookie_block_key must be empty or 16, 24 or 32 bytes long")
	}

	if c.CookieSameSite != "" {
		c.CookieSameSite = strings.ToUpper(c.CookieSameSite[:1]) + strings.ToLower(c.CookieSameSite[1:])
	}
	if !(c.CookieSameSite == "Lax" || c.CookieSameSite == "Strict" || c.CookieSameSite == "None") {
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name is required")
	}
	return nil
}
