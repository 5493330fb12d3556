// Package config loads the configuration of the folio application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saudanwar3/portfolio/fetch"
	"github.com/saudanwar3/portfolio/quote"
	"github.com/saudanwar3/portfolio/renderer"
	"github.com/saudanwar3/portfolio/stream"
)

// Config is the top-level configuration.
type Config struct {
	Source  Source  `yaml:"source"`
	Stream  Stream  `yaml:"stream"`
	Report  Report  `yaml:"report"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Source locates the portfolio payload. File takes precedence over URL.
type Source struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
	File string `yaml:"file"`
}

// Stream configures the price simulation.
type Stream struct {
	Interval time.Duration `yaml:"interval"`
	Bound    float64       `yaml:"bound"`
	Floor    float64       `yaml:"floor"`
	// Seed of the random price moves, 0 for a time based seed.
	Seed uint64 `yaml:"seed"`
}

// Report configures the presentation.
type Report struct {
	Currency string `yaml:"currency"`
}

// Server holds the network listener configuration.
type Server struct {
	Addr string `yaml:"addr"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source: Source{
			URL:  fetch.DefaultURL,
			Path: fetch.DefaultPath,
		},
		Stream: Stream{
			Interval: stream.DefaultInterval,
			Bound:    quote.DefaultBound,
			Floor:    quote.DefaultFloor,
		},
		Report:  Report{Currency: renderer.DefaultCurrency},
		Server:  Server{Addr: ":8080"},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the YAML configuration file at path over the defaults, then
// applies environment variable overrides. An empty path only applies the
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Stream.Interval <= 0 {
		errs = append(errs, fmt.Errorf("stream.interval must be positive, got %v", c.Stream.Interval))
	}
	if !(c.Stream.Bound > 0 && c.Stream.Bound < 1) {
		errs = append(errs, fmt.Errorf("stream.bound must be in (0, 1), got %v", c.Stream.Bound))
	}
	if !(c.Stream.Floor > 0) {
		errs = append(errs, fmt.Errorf("stream.floor must be positive, got %v", c.Stream.Floor))
	}
	if c.Source.File == "" && c.Source.URL == "" {
		errs = append(errs, errors.New("one of source.file or source.url is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnvOverrides overrides the configuration fields whose FOLIO_*
// environment variable is set.
func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"FOLIO_URL":       &cfg.Source.URL,
		"FOLIO_PATH":      &cfg.Source.Path,
		"FOLIO_FILE":      &cfg.Source.File,
		"FOLIO_CURRENCY":  &cfg.Report.Currency,
		"FOLIO_ADDR":      &cfg.Server.Addr,
		"FOLIO_LOG_LEVEL": &cfg.Logging.Level,
	}
	for k, p := range str {
		if v := os.Getenv(k); v != "" {
			*p = v
		}
	}

	if v := os.Getenv("FOLIO_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FOLIO_INTERVAL: %w", err)
		}
		cfg.Stream.Interval = d
	}
	floats := map[string]*float64{
		"FOLIO_BOUND": &cfg.Stream.Bound,
		"FOLIO_FLOOR": &cfg.Stream.Floor,
	}
	for k, p := range floats {
		if v := os.Getenv(k); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", k, err)
			}
			*p = f
		}
	}
	if v := os.Getenv("FOLIO_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid FOLIO_SEED: %w", err)
		}
		cfg.Stream.Seed = n
	}
	return nil
}
