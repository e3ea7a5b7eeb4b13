// Package config holds the runtime settings of the ccxpctl command.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the proxy's gRPC endpoint.
//   - DatabasePath: sqlite file that keeps the encrypted credentials.
//   - Timeout: deadline for a single SignIn or RefreshSession call.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	Timeout            time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "ccxpctl.db"
	c.Timeout = 30 * time.Second
}

// LoadConfig constructs a Config from defaults, then the JSON file named by
// -c/-config, then command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the CLI cannot work with.
func (c *Config) Validate() error {
	if c.ServerEndpointAddr == "" {
		return errors.New("server endpoint address is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
