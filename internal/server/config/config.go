// Package config handles configuration for the proxy server: defaults, an
// optional JSON overlay, command-line flags, and secrets from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/cryptox"
)

// Config holds runtime settings for the proxy.
//
// Fields:
//   - GRPCAddr / HTTPAddr: bind addresses of the inbound surfaces; empty disables one.
//   - CCXPBaseURL: base of the CCXP INQUIRE tree, e.g. "https://www.ccxp.nthu.edu.tw/ccxp/INQUIRE".
//   - OCRBaseURL: CAPTCHA OCR microservice endpoint.
//   - UpstreamTimeout: per-call timeout for every CCXP/OCR call.
//   - MaxAttempts: fetch→solve→submit cycles allowed per login.
//   - CipherKeyHex: hex AES-256 key (env CCXP_AES_KEY). Never logged.
//   - TokenSecret / TokenIssuer / TokenTTL: settings of the HS256 token minter (env TOKEN_SECRET).
//   - DatabaseDSN: optional PostgreSQL DSN for the login audit trail.
//   - S3*: optional S3-compatible bucket for CAPTCHA samples.
//   - LogLevel: debug|info|warn|error.
type Config struct {
	GRPCAddr        string
	HTTPAddr        string
	CCXPBaseURL     string
	OCRBaseURL      string
	UpstreamTimeout time.Duration
	ArchiveTimeout  time.Duration
	MaxAttempts     int
	CipherKeyHex    string
	TokenSecret     string
	TokenIssuer     string
	TokenTTL        time.Duration
	DatabaseDSN     string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	LogLevel        string
}

// LoadDefaults populates Config with development defaults. Secrets have no
// default and must come from the environment.
func (c *Config) LoadDefaults() {
	c.GRPCAddr = ":50051"
	c.HTTPAddr = ":8080"
	c.CCXPBaseURL = "https://www.ccxp.nthu.edu.tw/ccxp/INQUIRE"
	c.OCRBaseURL = "https://ocr.nthumods.com/"
	c.UpstreamTimeout = 3 * time.Second
	c.ArchiveTimeout = 2 * time.Second
	c.MaxAttempts = 3
	c.TokenIssuer = "ccxpauth"
	c.TokenTTL = time.Hour
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then JSON, then flags, then environment.
// Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	parseEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if _, err := cryptox.ParseKey(c.CipherKeyHex); err != nil {
		errs = append(errs, fmt.Errorf("CCXP_AES_KEY: %w", err))
	}
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET is required"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	if c.GRPCAddr == "" && c.HTTPAddr == "" {
		errs = append(errs, errors.New("at least one of grpc or http address is required"))
	}
	return errors.Join(errs...)
}

// CipherKey decodes CipherKeyHex. Call after Validate.
func (c *Config) CipherKey() (cryptox.Key, error) {
	return cryptox.ParseKey(c.CipherKeyHex)
}
