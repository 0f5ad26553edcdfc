package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runApp builds an App over cfg with logs silenced and executes the batch,
// returning everything written to the shared output writer.
func runApp(t *testing.T, cfg Config) (string, error) {
	t.Helper()
	cfg.LogLevel = "error"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := New(&out, validated)
	require.NoError(t, err)
	err = a.Run(context.Background())
	return out.String(), err
}

func TestRunReportsFinalConfiguration(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "double" {
  inline = "@mu = [ ]'1; @ms(1) = a{2}; [a]'1 --> [b]'1;"
}
`)

	output, err := runApp(t, Config{Path: path})
	require.NoError(t, err)

	want := "simulation \"double\": steps=1 halted=true dropped=0\n" +
		"  membrane 1 \"1\": b{2}\n"
	assert.Equal(t, want, output)
}

func TestRunWritesTraceWhenRequested(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "double" {
  inline = "@mu = [ ]'1; @ms(1) = a{2}; [a]'1 --> [b]'1;"
  trace  = true
}
`)

	output, err := runApp(t, Config{Path: path})
	require.NoError(t, err)

	want := "simulation \"double\": steps=1 halted=true dropped=0\n" +
		"  membrane 1 \"1\": b{2}\n" +
		"  trace:\n" +
		"    step 0: 1=[a{2}]\n" +
		"    step 1: 1=[b{2}]\n"
	assert.Equal(t, want, output)
}

func TestRunHaltWhenStopsTheRun(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "loop" {
  inline    = "@mu = [ ]'1; @ms(1) = a; [a]'1 --> [a]'1;"
  halt_when = step >= 3
}
`)

	output, err := runApp(t, Config{Path: path})
	require.NoError(t, err)

	want := "simulation \"loop\": steps=3 halted=true dropped=0\n" +
		"  membrane 1 \"1\": a\n"
	assert.Equal(t, want, output)
}

func TestRunHaltEvaluationFailureAbortsRun(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "bad" {
  inline    = "@mu = [ ]'1; @ms(1) = a; [a]'1 --> [a]'1;"
  halt_when = ms(1, "a")
}
`)

	_, err := runApp(t, Config{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `simulation "bad"`)
	assert.Contains(t, err.Error(), "halt condition")
	assert.Contains(t, err.Error(), "must produce a boolean")
}

func TestRunOmitsDissolvedMembranes(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "dissolve" {
  inline = "@mu = [ [ ]'inner ]'skin; @ms(2) = a; [a]'inner --> []'inner;"
}
`)

	output, err := runApp(t, Config{Path: path})
	require.NoError(t, err)

	want := "simulation \"dissolve\": steps=1 halted=true dropped=0\n" +
		"  membrane 1 \"skin\": (empty)\n"
	assert.Equal(t, want, output)
}

func TestRunCountsDroppedProductions(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "leak" {
  inline = "@mu = [ ]'1; @ms(1) = a; [a]'1 --> (b, out);"
}
`)

	output, err := runApp(t, Config{Path: path})
	require.NoError(t, err)

	want := "simulation \"leak\": steps=1 halted=true dropped=1\n" +
		"  membrane 1 \"1\": (empty)\n"
	assert.Equal(t, want, output)
}

func TestRunDirectModelRespectsStepBound(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "loop.pli", "@mu = [ ]'1;\n@ms(1) = a;\n[a]'1 --> [a]'1;\n")

	output, err := runApp(t, Config{Path: path, Steps: 2})
	require.NoError(t, err)

	want := "simulation \"loop\": steps=2 halted=false dropped=0\n" +
		"  membrane 1 \"1\": a\n"
	assert.Equal(t, want, output)
}

func TestRunSeededRandomIsReproducible(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "coin" {
  inline   = "@mu = [ ]'1; @ms(1) = a{6}; [a]'1 --> [b]'1; [a]'1 --> [c]'1;"
  strategy = "random"
  seed     = 11
}
`)

	first, err := runApp(t, Config{Path: path})
	require.NoError(t, err)
	second, err := runApp(t, Config{Path: path})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, `simulation "coin"`)
}

func TestRunFailsOnUnreadableModel(t *testing.T) {
	t.Parallel()

	_, err := runApp(t, Config{Path: filepath.Join(t.TempDir(), "ghost.pli")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `simulation "ghost"`)
	assert.Contains(t, err.Error(), "reading model")
}

func TestRunFailsOnUnparsableModel(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "broken.pli", "@mu = [ ]'1")

	_, err := runApp(t, Config{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `simulation "broken"`)
	assert.Contains(t, err.Error(), "parsing model")
}

func TestRunBatchStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "runs.hcl", `
simulation "ok" {
  inline = "@mu = [ ]'1; @ms(1) = a; [a]'1 --> [b]'1;"
}

simulation "bad" {
  inline = "@mu = [ ]'1"
}
`)

	cfg, err := NewConfig(Config{Path: path, LogLevel: "error"})
	require.NoError(t, err)
	var out bytes.Buffer
	a, err := New(&out, cfg)
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `simulation "bad"`)
	assert.Contains(t, out.String(), `simulation "ok": steps=1 halted=true dropped=0`)
}
