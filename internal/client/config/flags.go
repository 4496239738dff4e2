package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/farmkeeper/internal/flagx"
)

var ownedFlags = []string{
	"-d", "--d", "-db", "--db",
	"-t", "--t", "-timeout", "--timeout",
	"-l", "--l", "-log-level", "--log-level",
}

// parseFlags populates cfg from the flags it owns in args; everything else
// (subcommands, their flags) is ignored. It panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the local database")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request network timeout")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request network timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, ownedFlags)); err != nil {
		panic(err)
	}
}
