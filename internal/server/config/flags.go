package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-g string   gRPC bind address (empty disables gRPC)
//	-a string   HTTP bind address (empty disables HTTP)
//	-x string   CCXP base URL
//	-o string   OCR service URL
//	-t int      per-call upstream timeout, milliseconds
//	-n int      attempt budget
//	-d string   PostgreSQL DSN for the audit trail
//	-b string   S3 bucket for CAPTCHA samples
//	-e string   S3 base endpoint
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, "g", "a", "x", "o", "t", "n", "d", "b", "e", "l")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC bind address")
	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP bind address")
	fs.StringVar(&cfg.CCXPBaseURL, "x", cfg.CCXPBaseURL, "CCXP base URL")
	fs.StringVar(&cfg.OCRBaseURL, "o", cfg.OCRBaseURL, "OCR service URL")
	timeoutMs := fs.Int("t", int(cfg.UpstreamTimeout.Milliseconds()), "upstream timeout (ms)")
	fs.IntVar(&cfg.MaxAttempts, "n", cfg.MaxAttempts, "attempt budget")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "audit database DSN")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "CAPTCHA archive bucket")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.UpstreamTimeout = time.Duration(*timeoutMs) * time.Millisecond
	return nil
}
