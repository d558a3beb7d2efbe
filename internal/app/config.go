package app

import (
	"errors"
	"runtime"

	"github.com/buddhist-uni/big-imgs/internal/magick"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// GridPath is the HCL grid file declaring groups and copies.
	GridPath string
	// DestPath is the destination root everything ends up in.
	DestPath string

	// Workers bounds concurrent engine invocations; 0 means one per CPU.
	Workers int
	// RemoveOld prunes destination paths no current source produces.
	RemoveOld bool
	// DryRun prints actions and commands without taking them.
	DryRun  bool
	Verbose bool

	// MagickBin is the engine binary, defaulting to magick.DefaultBin.
	MagickBin string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and fills in its defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.DestPath == "" {
		return nil, errors.New("DestPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MagickBin == "" {
		cfg.MagickBin = magick.DefaultBin
	}
	return &cfg, nil
}
