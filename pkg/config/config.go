// Package config loads the admin console configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

// Config is the admin console configuration.
type Config struct {
	Environment    string        `env:"ADMIN_ENV" envDefault:"local"`
	Port           int           `env:"ADMIN_PORT" envDefault:"8080"`
	BackendURL     string        `env:"ADMIN_BACKEND_URL"`
	MySQLDSN       string        `env:"ADMIN_MYSQL_DSN"`
	PageSize       int           `env:"ADMIN_PAGE_SIZE" envDefault:"10"`
	RequestTimeout time.Duration `env:"ADMIN_REQUEST_TIMEOUT" envDefault:"10s"`
	LogLevel       string        `env:"ADMIN_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that exactly one data source is configured and that the
// numeric settings are in range.
func (c Config) Validate() error {
	switch {
	case c.BackendURL == "" && c.MySQLDSN == "":
		return errors.New("one of ADMIN_BACKEND_URL or ADMIN_MYSQL_DSN is required")
	case c.BackendURL != "" && c.MySQLDSN != "":
		return errors.New("ADMIN_BACKEND_URL and ADMIN_MYSQL_DSN are mutually exclusive")
	}

	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid ADMIN_BACKEND_URL %q", c.BackendURL)
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid ADMIN_PORT %d", c.Port)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("ADMIN_PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("ADMIN_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func (c Config) IsLocal() bool {
	return c.Environment == EnvLocal
}

func (c Config) IsProd() bool {
	return c.Environment == EnvProduction
}

// UseBackend reports whether pages are loaded from the REST backend rather
// than directly from MySQL.
func (c Config) UseBackend() bool {
	return c.BackendURL != ""
}

// ListenAddr returns the address the admin server listens on.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
