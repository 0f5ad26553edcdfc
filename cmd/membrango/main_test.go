package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ExecutesModel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "double.pli")
	model := "@mu = [ ]'1;\n@ms(1) = a{2};\n[a]'1 --> [b]'1;\n"
	require.NoError(t, os.WriteFile(filePath, []byte(model), 0o600), "failed to set up test file")

	args := []string{"--log-level=error", filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), `simulation "double": steps=1 halted=true dropped=0`)
	require.Contains(t, out.String(), `membrane 1 "1": b{2}`)
}

func TestRun_LoadFailureReturnsError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A manifest with a syntax error must surface as a load error, not reach
	// the engine.
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "runs.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(`simulation "broken" {`), 0o600), "failed to set up test file")

	args := []string{filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse scenario file")
}
