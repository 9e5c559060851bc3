// Package config loads runtime configuration for the StuVerFlow client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present.
//  3. Environment variables (STUVERFLOW_*).
//  4. Command-line flags, which override earlier values.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/stuverflow/stuverflow-go/internal/flagx"
)

// Config holds runtime settings for the StuVerFlow client.
type Config struct {
	// BaseURL is the root of the backend REST API.
	BaseURL string `env:"STUVERFLOW_BASE_URL"`
	// DatabaseDSN locates the local client database.
	DatabaseDSN string `env:"STUVERFLOW_DB_DSN"`
	// RequestTimeout bounds every outgoing HTTP request.
	RequestTimeout time.Duration `env:"STUVERFLOW_REQUEST_TIMEOUT"`
	// SessionTTL is the session expiry threshold.
	SessionTTL time.Duration `env:"STUVERFLOW_SESSION_TTL"`
	// ExpiryCheckInterval is the expiry watcher's polling period.
	ExpiryCheckInterval time.Duration `env:"STUVERFLOW_EXPIRY_CHECK_INTERVAL"`
	// DebounceDelay is the quiet window for debounced search.
	DebounceDelay time.Duration `env:"STUVERFLOW_DEBOUNCE_DELAY"`
	// TrendingTTL is the trending cache freshness window.
	TrendingTTL time.Duration `env:"STUVERFLOW_TRENDING_TTL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "https://api.stuverflow.com"
	c.DatabaseDSN = "stuverflow.db"
	c.RequestTimeout = 10 * time.Second
	c.SessionTTL = 720 * time.Hour
	c.ExpiryCheckInterval = 60 * time.Second
	c.DebounceDelay = 300 * time.Millisecond
	c.TrendingTTL = 5 * time.Minute
}

// LoadConfig constructs a Config from defaults, the optional .env file, the
// environment, and command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// The .env file is optional; a missing file is not an error.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFlags overlays command-line flag values onto c. Arguments are filtered
// down to the flags the client owns first, so flags registered by other
// components (or the test binary) do not break parsing.
func (c *Config) parseFlags(args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-d", "-session-ttl", "-timeout"})

	fs := flag.NewFlagSet("stuverflow", flag.ContinueOnError)
	fs.StringVar(&c.BaseURL, "u", c.BaseURL, "base URL of the StuVerFlow API")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "path of the local client database")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "session expiry threshold")
	fs.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "HTTP request timeout")
	return fs.Parse(args)
}
