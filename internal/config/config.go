// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// defaultTokenSecret is only acceptable for local development; Load
// refuses to run with it unless AllowInsecureSecret is set.
const defaultTokenSecret = "dev-insecure-secret"

// Config holds runtime settings for the identity server.
type Config struct {
	ListenAddr          string        `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabasePath        string        `env:"DATABASE_PATH" envDefault:"identity.db"`
	RevocationDBPath    string        `env:"REVOCATION_DB_PATH" envDefault:"revoked.db"`
	TokenSecret         string        `env:"TOKEN_SECRET" envDefault:"dev-insecure-secret"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	RateLimit           int           `env:"RATE_LIMIT" envDefault:"100"`
	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	AuthRateLimit       int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	AuthRateLimitWindow time.Duration `env:"AUTH_RATE_LIMIT_WINDOW" envDefault:"5m"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowInsecureSecret bool          `env:"ALLOW_INSECURE_SECRET" envDefault:"false"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET cannot be empty")
	}
	if c.TokenSecret == defaultTokenSecret && !c.AllowInsecureSecret {
		return errors.New("TOKEN_SECRET is the insecure default; set a real secret or ALLOW_INSECURE_SECRET=true for local development")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.RateLimit <= 0 || c.AuthRateLimit <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}
