package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/countrybook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   account backend base URL
//	-r string   countries API base URL
//	-s string   state file path
//	-t int      request timeout in seconds
//	-l string   log level
//	-m string   metrics listen address
//
// args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c/-config) do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-r", "-s", "-t", "-l", "-m"})

	fs := flag.NewFlagSet("countrybook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "account backend base URL")
	fs.StringVar(&cfg.CountriesBaseURL, "r", cfg.CountriesBaseURL, "countries API base URL")
	fs.StringVar(&cfg.StateFile, "s", cfg.StateFile, "path to the client state file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "address for the /metrics listener")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// -t only overrides earlier sources when given explicitly
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			set = true
		}
	})
	if !set {
		return nil
	}
	if *timeout <= 0 {
		return fmt.Errorf("parse flags: timeout must be positive, got %d", *timeout)
	}
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
