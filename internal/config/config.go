// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read once at startup and passed to constructors explicitly
type Config struct {
	Port            string        `env:"PORT" envDefault:"8000"`
	DatabaseDriver  string        `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"file:postbridge.db?_foreign_keys=on"`
	UpstreamBaseURL string        `env:"UPSTREAM_BASE_URL" envDefault:"https://jsonplaceholder.typicode.com"`
	RedisURL        string        `env:"REDIS_URL"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"5s"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MinTitleWords   int           `env:"MIN_TITLE_WORDS" envDefault:"2"`
	MinBodyLength   int           `env:"MIN_BODY_LENGTH" envDefault:"10"`
	RateLimit       int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	SeedData        bool          `env:"SEED_DATA" envDefault:"true"`
}

// Load parses the environment and validates the result
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

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL must be an absolute URL, got %q", c.UpstreamBaseURL))
	}

	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.MinTitleWords < 1 {
		errs = append(errs, errors.New("MIN_TITLE_WORDS must be at least 1"))
	}
	if c.MinBodyLength < 1 {
		errs = append(errs, errors.New("MIN_BODY_LENGTH must be at least 1"))
	}
	if c.RateLimit < 1 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}
