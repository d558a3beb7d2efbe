package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/buddhist-uni/big-imgs/internal/config"
	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
	"github.com/buddhist-uni/big-imgs/internal/executor"
	"github.com/buddhist-uni/big-imgs/internal/magick"
)

// Engine bundles the two external-process capabilities a run needs. Tests
// inject fakes here; production wiring uses one magick.Engine for both.
type Engine struct {
	Prober magick.Prober
	Runner executor.Runner
}

// App encapsulates one configured run of the pipeline.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model
	engine *Engine
}

// NewApp creates a fully initialized App. It loads and validates the grid
// file up front and panics on any failure, as an app with a broken grid
// cannot meaningfully run. The entrypoint recovers the panic.
func NewApp(outW io.Writer, cfg *Config, engine *Engine) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	if engine == nil {
		eng := magick.NewEngine(cfg.MagickBin)
		engine = &Engine{Prober: eng, Runner: eng}
	}

	ctx := ctxlog.WithLogger(context.Background(), logger)
	model, err := config.Load(ctx, cfg.GridPath)
	if err != nil {
		panic(fmt.Sprintf("loading grid %s: %v", cfg.GridPath, err))
	}
	logger.Debug("Grid loaded.", "path", cfg.GridPath, "groups", len(model.Groups), "copies", len(model.Copies))

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		model:  model,
		engine: engine,
	}
}

// Logger exposes the application's configured logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
