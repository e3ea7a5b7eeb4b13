package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ccxpauth/internal/flagx"
	"github.com/dmitrijs2005/ccxpauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Secrets are
// deliberately absent: they only come from the environment. Zero values
// leave the current setting untouched.
type JsonConfig struct {
	GRPCAddr        string         `json:"grpc_addr"`
	HTTPAddr        string         `json:"http_addr"`
	CCXPBaseURL     string         `json:"ccxp_base_url"`
	OCRBaseURL      string         `json:"ocr_base_url"`
	UpstreamTimeout timex.Duration `json:"upstream_timeout"`
	ArchiveTimeout  timex.Duration `json:"archive_timeout"`
	MaxAttempts     int            `json:"max_attempts"`
	TokenIssuer     string         `json:"token_issuer"`
	TokenTTL        timex.Duration `json:"token_ttl"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	LogLevel        string         `json:"log_level"`
}

// parseJSON loads the file named by -c/-config in args, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.GRPCAddr, c.GRPCAddr)
	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.CCXPBaseURL, c.CCXPBaseURL)
	setString(&cfg.OCRBaseURL, c.OCRBaseURL)
	setString(&cfg.TokenIssuer, c.TokenIssuer)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.LogLevel, c.LogLevel)
	if c.UpstreamTimeout.Duration > 0 {
		cfg.UpstreamTimeout = c.UpstreamTimeout.Duration
	}
	if c.ArchiveTimeout.Duration > 0 {
		cfg.ArchiveTimeout = c.ArchiveTimeout.Duration
	}
	if c.TokenTTL.Duration > 0 {
		cfg.TokenTTL = c.TokenTTL.Duration
	}
	if c.MaxAttempts > 0 {
		cfg.MaxAttempts = c.MaxAttempts
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
