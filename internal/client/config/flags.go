package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the proxy's gRPC endpoint
//	-f string   path of the local sqlite file
//	-t int      call timeout in seconds
//
// Only these flags are picked out of args, so subcommand flags such as -u
// pass through untouched.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, "a", "f", "t")

	fs := flag.NewFlagSet("ccxpctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "call timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
	return nil
}
