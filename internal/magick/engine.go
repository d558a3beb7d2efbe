package magick

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
)

// DefaultBin is the engine binary used when none is configured. ImageMagick 7
// fronts every subcommand through a single "magick" entrypoint.
const DefaultBin = "magick"

// Prober reports the pixel dimensions of an image file.
type Prober interface {
	Probe(ctx context.Context, path string) (width, height int, err error)
}

// Engine invokes an ImageMagick-compatible binary. It implements both the
// Prober interface and the executor's Runner interface.
type Engine struct {
	Bin string
}

// NewEngine returns an Engine for the given binary name, falling back to
// DefaultBin when empty.
func NewEngine(bin string) *Engine {
	if bin == "" {
		bin = DefaultBin
	}
	return &Engine{Bin: bin}
}

// Probe runs a ping-only identify and parses "%w %h".
func (e *Engine) Probe(ctx context.Context, path string) (int, int, error) {
	argv := []string{"identify", "-ping", "-format", "%w %h", path}
	out, err := exec.CommandContext(ctx, e.Bin, argv...).Output()
	if err != nil {
		return 0, 0, fmt.Errorf("probing %s: %w", path, err)
	}

	var width, height int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%d %d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("probing %s: unexpected identify output %q: %w", path, out, err)
	}
	return width, height, nil
}

// Run executes one compiled pipeline and returns its combined stdout and
// stderr. The engine often writes progress to stderr even on success, so
// the two streams are captured together for operator display.
func (e *Engine) Run(ctx context.Context, argv []string) ([]byte, error) {
	ctxlog.FromContext(ctx).Debug("Invoking engine.", "bin", e.Bin, "args", len(argv))
	out, err := exec.CommandContext(ctx, e.Bin, argv...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w", CommandString(e.Bin, argv), err)
	}
	return out, nil
}
