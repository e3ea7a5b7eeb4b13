package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ccxpauth/internal/flagx"
	"github.com/dmitrijs2005/ccxpauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Timeout may
// be written as "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabasePath       string         `json:"database_path"`
	Timeout            timex.Duration `json:"timeout"`
}

// parseJSON overlays cfg with the file given by -c/-config. Empty values in
// the file leave the current setting as is.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.Timeout.Duration > 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
	return nil
}
