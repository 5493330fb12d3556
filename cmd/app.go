// Package cmd implements the folio CLI application.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saudanwar3/portfolio/config"
	"github.com/saudanwar3/portfolio/fetch"
	"github.com/saudanwar3/portfolio/quote"
	"github.com/saudanwar3/portfolio/renderer"
	"github.com/saudanwar3/portfolio/stream"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&showCmd{}, "portfolio")
	c.Register(&watchCmd{}, "portfolio")
	c.Register(&serveCmd{}, "portfolio")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file")
var sourceURL = flag.String("url", "", "URL of the portfolio payload. Overrides the configuration.")
var sourceFile = flag.String("file", "", "Path to a local portfolio payload. Overrides the configuration.")
var verbose = flag.Bool("v", false, "Verbose logging")

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *sourceURL != "" {
		cfg.Source.URL = *sourceURL
		cfg.Source.File = ""
	}
	if *sourceFile != "" {
		cfg.Source.File = *sourceFile
	}
	setupLogging(cfg.Logging)
	return cfg, nil
}

// reportCurrency returns code, or the configured currency when code is empty.
func reportCurrency(code string, cfg *config.Config) string {
	if code == "" {
		code = cfg.Report.Currency
	}
	if !renderer.KnownCurrency(code) {
		log.Warn().Str("currency", code).Msg("unknown currency, amounts are suffixed with its code")
	}
	return code
}

// setupLogging configures the global logger to write on stderr.
func setupLogging(l config.Logging) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// newFetcher returns the fetcher of the configured source.
func newFetcher(s config.Source) stream.Fetcher {
	if s.File != "" {
		return fetch.File{Name: s.File, Path: s.Path}
	}
	return &fetch.Client{URL: s.URL, Path: s.Path}
}

// newStream returns an Idle stream simulating prices as configured.
func newStream(s config.Stream, opts ...stream.Option) *stream.Stream {
	seed := s.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	sim := quote.New(quote.NewRandSource(seed), quote.WithBound(s.Bound), quote.WithFloor(s.Floor))
	opts = append([]stream.Option{stream.WithInterval(s.Interval), stream.WithLogger(log.Logger)}, opts...)
	return stream.New(sim, opts...)
}

// fail prints an error and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
