package app

import (
	"context"
	"fmt"
	"os"

	"github.com/membrango/membrango/internal/ctxlog"
	"github.com/membrango/membrango/internal/scenario"
	"github.com/membrango/membrango/plingua"
	"github.com/membrango/membrango/sim"
)

// Run executes every resolved run in order and reports each outcome to the
// app's writer. The first failing run aborts the batch.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if len(a.runs) == 0 {
		a.logger.Warn("No simulations found, nothing to run.")
		return nil
	}

	a.logger.Info("🚀 Starting simulations...", "count", len(a.runs))
	for _, run := range a.runs {
		if err := a.runOne(ctx, run); err != nil {
			return fmt.Errorf("simulation %q: %w", run.Name, err)
		}
	}
	a.logger.Info("🏁 All simulations finished.", "count", len(a.runs))

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) runOne(ctx context.Context, run *scenario.Run) error {
	a.logger.Info("▶️ Running simulation...", "name", run.Name)

	source := run.Source
	if run.ModelPath != "" {
		raw, err := os.ReadFile(run.ModelPath)
		if err != nil {
			return fmt.Errorf("reading model: %w", err)
		}
		source = string(raw)
	}

	sys, err := plingua.Parse(source)
	if err != nil {
		return fmt.Errorf("parsing model: %w", err)
	}
	a.logger.Debug("Model parsed.", "membranes", len(sys.Membranes()), "rules", len(sys.Rules()))

	opts, haltErr := assembleOptions(run)
	result, err := sim.Simulate(ctx, sys, opts)
	if err != nil {
		return err
	}
	if *haltErr != nil {
		return fmt.Errorf("halt condition: %w", *haltErr)
	}

	a.logger.Info("✅ Simulation finished.",
		"name", run.Name,
		"steps", result.Steps,
		"halted", result.Halted,
		"dropped", result.Dropped,
	)
	a.report(run, sys, result)
	return nil
}

// assembleOptions turns a resolved run into engine options. The engine only
// sees a boolean halt condition, so a failed halt_when evaluation is recorded
// in the returned error slot and stops the run; the caller turns the recorded
// error into a run failure after Simulate returns.
func assembleOptions(run *scenario.Run) (sim.Options, *error) {
	opts := sim.Options{
		MaxSteps: run.MaxSteps,
		Trace:    run.Trace,
		Strategy: run.Strategy,
	}
	if run.Seed != nil {
		opts.Rand = sim.NewSeededRand(*run.Seed)
	}
	var haltErr error
	if run.Halt != nil {
		halt := run.Halt
		opts.HaltCondition = func(cfg *sim.Configuration) bool {
			stop, err := halt.Eval(cfg)
			if err != nil {
				haltErr = err
				return true
			}
			return stop
		}
	}
	return opts, &haltErr
}
