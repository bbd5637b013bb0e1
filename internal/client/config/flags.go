package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/totpvault/internal/flagx"
)

// ValueFlags lists every CLI-level flag that takes a separate value,
// including -c/-config. Used to find the command words in os.Args.
var ValueFlags = []string{"-a", "-t", "-c", "-config"}

// parseFlags overlays cfg with:
//
//	-a string    address and port of the vault server
//	-t duration  per-request timeout, e.g. "15s"
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-t"}))
}
