package config

import (
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvCipherKey   = "CCXP_AES_KEY"
	EnvTokenSecret = "TOKEN_SECRET"
	EnvDatabaseDSN = "DATABASE_DSN"
	EnvS3AccessKey = "S3_ACCESS_KEY"
	EnvS3SecretKey = "S3_SECRET_KEY"
	EnvLogLevel    = "LOG_LEVEL"
	EnvMaxAttempts = "CCXP_MAX_ATTEMPTS"
	EnvTimeout     = "CCXP_TIMEOUT"
)

// parseEnv overlays values present in the environment. lookup is
// os.LookupEnv outside of tests.
func parseEnv(c *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str(EnvCipherKey, &c.CipherKeyHex)
	str(EnvTokenSecret, &c.TokenSecret)
	str(EnvDatabaseDSN, &c.DatabaseDSN)
	str(EnvS3AccessKey, &c.S3AccessKey)
	str(EnvS3SecretKey, &c.S3SecretKey)
	str(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvMaxAttempts); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v, ok := lookup(EnvTimeout); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.UpstreamTimeout = d
		}
	}
}
