// Package testutil provides shared helpers for integration tests: a fake
// engine, a thread-safe output buffer, and a harness that materializes a
// source tree plus grid file and runs the full pipeline against them.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/buddhist-uni/big-imgs/internal/app"
	"github.com/stretchr/testify/require"
)

// Harness is one materialized pipeline fixture: a temp root holding the
// source files, the grid file, and a destination directory.
type Harness struct {
	t *testing.T

	// Root is the temp directory everything lives under. Grid paths may
	// reference it as ${root}.
	Root string
	// DestDir is Root/site, the destination the pipeline writes into.
	DestDir string
	// GridPath is Root/big-imgs.hcl.
	GridPath string
}

// RunResult holds the outcomes of one pipeline run.
type RunResult struct {
	// Out is everything the run wrote to its output stream, logs and echo
	// lines alike.
	Out string
	Err error
}

// NewHarness writes the given files (paths relative to the temp root) and
// the grid file, and returns the ready fixture. The destination directory
// is not pre-created; the pipeline is expected to create it.
func NewHarness(t *testing.T, grid string, files map[string]string) *Harness {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	gridPath := filepath.Join(root, "big-imgs.hcl")
	require.NoError(t, os.WriteFile(gridPath, []byte(grid), 0o644))

	return &Harness{
		t:        t,
		Root:     root,
		DestDir:  filepath.Join(root, "site"),
		GridPath: gridPath,
	}
}

// Run executes the full pipeline with the given fake engine. The optional
// mutate callback adjusts the config before the app is built. Startup
// panics are recovered into the result's Err.
func (h *Harness) Run(engine *FakeEngine, mutate func(*app.Config)) *RunResult {
	h.t.Helper()

	cfg, err := app.NewConfig(app.Config{
		GridPath:  h.GridPath,
		DestPath:  h.DestDir,
		Workers:   2,
		LogLevel:  "debug",
		LogFormat: "text",
	})
	require.NoError(h.t, err)
	if mutate != nil {
		mutate(cfg)
	}

	out := &SafeBuffer{}
	result := &RunResult{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("startup panicked: %v", r)
			}
		}()
		pipelineApp := app.NewApp(out, cfg, &app.Engine{Prober: engine, Runner: engine})
		result.Err = pipelineApp.Run(context.Background())
	}()

	result.Out = out.String()
	return result
}

// DestPath joins path elements below the harness destination.
func (h *Harness) DestPath(elem ...string) string {
	return filepath.Join(append([]string{h.DestDir}, elem...)...)
}
