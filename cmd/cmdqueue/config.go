package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// envPrefix prefixes every environment variable cmdqueue reads.
const envPrefix = "RENDERCMD_"

// config holds cmdqueue settings. Environment variables provide the
// defaults; command line flags override them.
type config struct {
	Backend   string     `env:"BACKEND"`
	Producers int        `env:"PRODUCERS" envDefault:"4"`
	Commands  int        `env:"COMMANDS" envDefault:"256"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// OTelEndpoint enables span export over OTLP/HTTP when set.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// loadConfig reads the environment (environ, or the process environment
// when nil) and then parses args.
func loadConfig(args []string, environ map[string]string) (config, error) {
	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("cmdqueue", flag.ContinueOnError)
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "backend name (empty picks the best available)")
	fs.IntVar(&cfg.Producers, "producers", cfg.Producers, "number of recording goroutines")
	fs.IntVar(&cfg.Commands, "commands", cfg.Commands, "commands recorded per producer")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint (empty disables tracing)")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	var errs []error
	if c.Producers < 1 {
		errs = append(errs, fmt.Errorf("producers must be positive, got %d", c.Producers))
	}
	if c.Commands < 1 {
		errs = append(errs, fmt.Errorf("commands must be positive, got %d", c.Commands))
	}
	return errors.Join(errs...)
}
