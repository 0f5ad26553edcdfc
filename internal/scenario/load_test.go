package scenario

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/membrango/membrango/internal/ctxlog"
	"github.com/membrango/membrango/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietCtx carries a discard logger so tests stay silent.
func quietCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "runs.hcl", `
simulation "inline_run" {
  inline    = "@mu = []'1; @ms(1) = a; [a]'1 --> (b);"
  max_steps = 7
  strategy  = "first"
  trace     = true
  seed      = 42
  halt_when = step >= 3
}

simulation "file_run" {
  model = "models/doubling.pli"
}
`)

	runs, err := Load(quietCtx(), path)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	inline := runs[0]
	assert.Equal(t, "inline_run", inline.Name)
	assert.Empty(t, inline.ModelPath)
	assert.Contains(t, inline.Source, "@mu")
	assert.Equal(t, 7, inline.MaxSteps)
	assert.Equal(t, sim.StrategyFirst, inline.Strategy)
	assert.True(t, inline.Trace)
	require.NotNil(t, inline.Seed)
	assert.Equal(t, uint64(42), *inline.Seed)
	assert.NotNil(t, inline.Halt)

	file := runs[1]
	assert.Equal(t, "file_run", file.Name)
	assert.Empty(t, file.Source)
	assert.Equal(t, filepath.Join(dir, "models", "doubling.pli"), file.ModelPath)
	assert.Equal(t, sim.StrategyMaximal, file.Strategy)
	assert.Zero(t, file.MaxSteps)
	assert.False(t, file.Trace)
	assert.Nil(t, file.Seed)
	assert.Nil(t, file.Halt)
}

func TestLoadAbsoluteModelPathKept(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "runs.hcl", `
simulation "abs" {
  model = "/elsewhere/model.pli"
}
`)

	runs, err := Load(quietCtx(), path)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/elsewhere/model.pli", runs[0].ModelPath)
}

func TestLoadDirectoryWalksInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a/one.hcl", `
simulation "alpha" {
  inline = "@mu = []'1;"
}
`)
	writeFile(t, dir, "b/two.hcl", `
simulation "beta" {
  inline = "@mu = []'1;"
}
`)
	writeFile(t, dir, "b/readme.txt", "not a manifest")

	runs, err := Load(quietCtx(), dir)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "alpha", runs[0].Name)
	assert.Equal(t, "beta", runs[1].Name)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    map[string]string
		contains string
	}{
		{
			name: "duplicate simulation names across files",
			files: map[string]string{
				"one.hcl": `simulation "same" { inline = "@mu = []'1;" }`,
				"two.hcl": `simulation "same" { inline = "@mu = []'1;" }`,
			},
			contains: `duplicate simulation "same"`,
		},
		{
			name: "model and inline together",
			files: map[string]string{
				"runs.hcl": `simulation "both" {
  model  = "m.pli"
  inline = "@mu = []'1;"
}`,
			},
			contains: "mutually exclusive",
		},
		{
			name: "neither model nor inline",
			files: map[string]string{
				"runs.hcl": `simulation "bare" { trace = true }`,
			},
			contains: "either model or inline is required",
		},
		{
			name: "unknown strategy",
			files: map[string]string{
				"runs.hcl": `simulation "odd" {
  inline   = "@mu = []'1;"
  strategy = "bogus"
}`,
			},
			contains: `invalid strategy "bogus"`,
		},
		{
			name: "negative max_steps",
			files: map[string]string{
				"runs.hcl": `simulation "neg" {
  inline    = "@mu = []'1;"
  max_steps = -1
}`,
			},
			contains: "max_steps must not be negative",
		},
		{
			name: "unsupported attribute",
			files: map[string]string{
				"runs.hcl": `simulation "typo" {
  inline  = "@mu = []'1;"
  tracing = true
}`,
			},
			contains: "failed to decode scenario file",
		},
		{
			name: "malformed manifest",
			files: map[string]string{
				"runs.hcl": `simulation "broken" {`,
			},
			contains: "failed to parse scenario file",
		},
		{
			name: "unknown halt variable",
			files: map[string]string{
				"runs.hcl": `simulation "vars" {
  inline    = "@mu = []'1;"
  halt_when = steps > 3
}`,
			},
			contains: `unknown variable "steps"`,
		},
		{
			name: "unknown halt function",
			files: map[string]string{
				"runs.hcl": `simulation "funcs" {
  inline    = "@mu = []'1;"
  halt_when = count(1) > 0
}`,
			},
			contains: `unknown function "count"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			_, err := Load(quietCtx(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	t.Parallel()

	_, err := Load(quietCtx(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario path")
}

func TestLoadEmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := Load(quietCtx(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl scenario files")
}
