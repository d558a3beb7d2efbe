package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FakeEngine stands in for the external image engine in integration tests.
// It probes dimensions from a lookup table and "executes" pipelines by
// writing placeholder bytes to every output path in the argument vector.
type FakeEngine struct {
	// Dims maps source base names to [width, height].
	Dims map[string][2]int
	// FailFor lists source base names whose pipeline execution should fail.
	FailFor map[string]bool

	mu     sync.Mutex
	calls  [][]string
	probes []string
}

// Probe returns the configured dimensions for the file's base name.
func (e *FakeEngine) Probe(_ context.Context, path string) (int, int, error) {
	e.mu.Lock()
	e.probes = append(e.probes, path)
	e.mu.Unlock()

	dims, ok := e.Dims[filepath.Base(path)]
	if !ok {
		return 0, 0, fmt.Errorf("probe %s: no such image", path)
	}
	return dims[0], dims[1], nil
}

// Run records the invocation and materializes its outputs: every path
// following a "-write" token (register writes excluded) plus the terminal
// path at the end of the vector.
func (e *FakeEngine) Run(_ context.Context, argv []string) ([]byte, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), argv...))
	e.mu.Unlock()

	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argument vector")
	}
	if e.FailFor[filepath.Base(argv[0])] {
		return []byte("fake engine: decode failed\n"), fmt.Errorf("exit status 1")
	}

	outs := []string{argv[len(argv)-1]}
	for i := 0; i < len(argv)-1; i++ {
		if argv[i] == "-write" && !strings.HasPrefix(argv[i+1], "mpr:") {
			outs = append(outs, argv[i+1])
		}
	}
	for _, out := range outs {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(out, []byte("derived:"+filepath.Base(argv[0])), 0o644); err != nil {
			return nil, err
		}
	}
	return []byte("fake engine output\n"), nil
}

// Calls returns a copy of every recorded argument vector.
func (e *FakeEngine) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.calls...)
}

// Probes returns every probed source path in probe order.
func (e *FakeEngine) Probes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.probes...)
}
