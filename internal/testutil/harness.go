// Package testutil provides the shared harness for end-to-end tests: temp-dir
// fixture writing and a driver for the full CLI pipeline.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/membrango/membrango/internal/app"
	"github.com/membrango/membrango/internal/cli"
)

// SafeBuffer is a thread-safe buffer for capturing combined log and report
// output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles materializes the relative-path → content map under a fresh
// temporary directory and returns that directory. Paths with subdirectories
// create the structure as they go.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// HarnessResult holds the outcomes of an end-to-end CLI run.
type HarnessResult struct {
	Output    string // combined logs and reports
	Err       error
	CleanExit bool // usage/help path: no run happened and no error either
}

// RunCLI drives the same pipeline the binary runs — flag parsing, app
// construction, batch execution — capturing everything written to the shared
// output writer. It uses a default background context.
func RunCLI(t *testing.T, args ...string) *HarnessResult {
	t.Helper()
	return RunCLIWithContext(context.Background(), t, args...)
}

// RunCLIWithContext provides the harness with a specific context supplied by
// the caller.
func RunCLIWithContext(ctx context.Context, t *testing.T, args ...string) *HarnessResult {
	t.Helper()

	out := &SafeBuffer{}
	cfg, shouldExit, err := cli.Parse(args, out)
	if err != nil || shouldExit {
		return &HarnessResult{
			Output:    out.String(),
			Err:       err,
			CleanExit: shouldExit && err == nil,
		}
	}

	a, err := app.New(out, cfg)
	if err != nil {
		return &HarnessResult{Output: out.String(), Err: err}
	}

	err = a.Run(ctx)
	return &HarnessResult{Output: out.String(), Err: err}
}
