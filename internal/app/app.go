package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/membrango/membrango/internal/ctxlog"
	"github.com/membrango/membrango/internal/scenario"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: the logger, the resolved run list, and the writer results are
// reported to.
type App struct {
	out    io.Writer
	logger *slog.Logger
	config *Config
	runs   []*scenario.Run
}

// New is the constructor for the main application. It builds an isolated
// logger and resolves the configured path into the list of runs: a .pli path
// becomes a single direct run driven by the direct-run settings, anything
// else is loaded as scenario manifests.
func New(out io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, out)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	runs, err := resolveRuns(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	logger.Debug("Run list resolved.", "runs_found", len(runs))

	return &App{
		out:    out,
		logger: logger,
		config: cfg,
		runs:   runs,
	}, nil
}

func resolveRuns(ctx context.Context, cfg *Config) ([]*scenario.Run, error) {
	if !strings.HasSuffix(cfg.Path, ".pli") {
		return scenario.Load(ctx, cfg.Path)
	}
	return []*scenario.Run{{
		Name:      strings.TrimSuffix(filepath.Base(cfg.Path), ".pli"),
		ModelPath: cfg.Path,
		MaxSteps:  cfg.Steps,
		Strategy:  cfg.Strategy,
		Trace:     cfg.Trace,
		Seed:      cfg.Seed,
	}}, nil
}

// Runs returns the application's resolved runs. This is primarily for testing.
func (a *App) Runs() []*scenario.Run {
	return a.runs
}
