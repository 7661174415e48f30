// Package config reads billcycle settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultStoreFile is the history store created in the working directory.
const DefaultStoreFile = ".billcycle"

// Config holds settings shared by all commands. Command flags override them.
type Config struct {
	Password  string `env:"BILLCYCLE_PASSWORD"`
	StorePath string `env:"BILLCYCLE_STORE" envDefault:".billcycle"`
	LogLevel  string `env:"BILLCYCLE_LOG_LEVEL" envDefault:"warn"`
	NoKeyring bool   `env:"BILLCYCLE_NO_KEYRING"`
	NoHistory bool   `env:"BILLCYCLE_NO_HISTORY"`
}

// Parse reads the configuration from environment variables.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStoreFile
	}
	return cfg, nil
}

// TakePassword returns the configured password and forgets it, so the secret
// does not outlive the first command that needs it.
func (c *Config) TakePassword() []byte {
	if c.Password == "" {
		return nil
	}
	password := []byte(c.Password)
	c.Password = ""
	return password
}
