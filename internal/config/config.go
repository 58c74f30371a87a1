// Package config loads datavault settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/illarion/datavault/internal/logger"
	"github.com/illarion/datavault/internal/pathmap"
	"github.com/illarion/datavault/internal/vault"
)

// Config holds environment settings. Command-line flags override them.
type Config struct {
	// Secret is the base64 vault secret. It is never logged.
	Secret    string   `env:"DATAVAULT_SECRET"`
	MaxDepth  int      `env:"DATAVAULT_MAX_DEPTH" envDefault:"8"`
	Ignore    []string `env:"DATAVAULT_IGNORE" envSeparator:","`
	NoKeyring bool     `env:"DATAVAULT_NO_KEYRING"`
	LogLevel  string   `env:"DATAVAULT_LOG_LEVEL" envDefault:"warn"`
	LogFormat string   `env:"DATAVAULT_LOG_FORMAT" envDefault:"console"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and patterns.
func (c *Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("DATAVAULT_MAX_DEPTH must be positive, got %d", c.MaxDepth)
	}
	if _, err := pathmap.New(c.Ignore); err != nil {
		return fmt.Errorf("DATAVAULT_IGNORE: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("DATAVAULT_LOG_LEVEL: %w", err)
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("DATAVAULT_LOG_FORMAT: %w", err)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (zerolog.Level, error) {
	return logger.ParseLevel(c.LogLevel)
}

// Mapper builds the path mapper for the configured ignore patterns.
func (c *Config) Mapper() (*pathmap.Mapper, error) {
	return pathmap.New(c.Ignore)
}

// DiscoverOptions returns the vault discovery settings.
func (c *Config) DiscoverOptions() vault.DiscoverOptions {
	return vault.DiscoverOptions{MaxDepth: c.MaxDepth}
}
