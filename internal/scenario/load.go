package scenario

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/membrango/membrango/internal/ctxlog"
	"github.com/membrango/membrango/sim"
)

// Load reads the scenario manifests at path, a single .hcl file or a
// directory searched recursively, and resolves every declared simulation into
// a runnable request. Simulation names must be unique across all loaded
// files, and runs come back in file walk order.
func Load(ctx context.Context, path string) ([]*Run, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := manifestFiles(path)
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	var runs []*Run
	declared := make(map[string]string) // simulation name -> declaring file
	for _, file := range files {
		logger.Debug("Decoding scenario file.", "path", file)
		root, err := decodeFile(parser, file)
		if err != nil {
			return nil, err
		}
		for _, block := range root.Simulations {
			if prev, dup := declared[block.Name]; dup {
				return nil, fmt.Errorf("duplicate simulation %q in %s, first declared in %s", block.Name, file, prev)
			}
			declared[block.Name] = file

			run, err := resolve(file, block)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}
		logger.Debug("Scenario file decoded.", "path", file, "simulations_found", len(root.Simulations))
	}
	return runs, nil
}

// manifestFiles expands path into the manifests to read: the path itself when
// it names a file, otherwise every .hcl file under the directory.
func manifestFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s for scenario files: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl scenario files under %s", path)
	}
	return files, nil
}

func decodeFile(parser *hclparse.Parser, path string) (*fileRoot, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scenario file %s: %s", path, diags.Error())
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scenario file %s: %s", path, diags.Error())
	}
	return &root, nil
}

// resolve turns one decoded block into a Run, rejecting contradictory or
// incomplete settings here so nothing surfaces mid-batch.
func resolve(file string, block *simulationBlock) (*Run, error) {
	switch {
	case block.Model != "" && block.Inline != "":
		return nil, fmt.Errorf("simulation %q: model and inline are mutually exclusive", block.Name)
	case block.Model == "" && block.Inline == "":
		return nil, fmt.Errorf("simulation %q: either model or inline is required", block.Name)
	}
	if block.MaxSteps < 0 {
		return nil, fmt.Errorf("simulation %q: max_steps must not be negative, got %d", block.Name, block.MaxSteps)
	}

	strategy := sim.StrategyMaximal
	if block.Strategy != "" {
		var err error
		strategy, err = sim.ParseStrategy(block.Strategy)
		if err != nil {
			return nil, fmt.Errorf("simulation %q: %w", block.Name, err)
		}
	}

	run := &Run{
		Name:     block.Name,
		Source:   block.Inline,
		MaxSteps: block.MaxSteps,
		Strategy: strategy,
		Trace:    block.Trace,
		Seed:     block.Seed,
	}
	if block.Model != "" {
		run.ModelPath = block.Model
		if !filepath.IsAbs(run.ModelPath) {
			run.ModelPath = filepath.Join(filepath.Dir(file), run.ModelPath)
		}
	}
	if block.HaltWhen != nil {
		halt, err := compileHalt(block.HaltWhen.Expr)
		if err != nil {
			return nil, fmt.Errorf("simulation %q: %w", block.Name, err)
		}
		run.Halt = halt
	}
	return run, nil
}
