package app

import (
	"errors"
	"fmt"

	"github.com/membrango/membrango/sim"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Path string // model file, scenario manifest, or manifest directory

	LogFormat string
	LogLevel  string

	// Direct-run settings, used when Path names a model file. Scenario
	// manifests carry their own equivalents per simulation block.
	Steps    int
	Strategy sim.Strategy
	Trace    bool
	Seed     *uint64 // nil when no seed was given
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path == "" {
		return nil, errors.New("Path is a required configuration field and cannot be empty")
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("Steps must not be negative, got %d", cfg.Steps)
	}

	return &cfg, nil
}
