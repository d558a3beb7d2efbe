package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/buddhist-uni/big-imgs/internal/app"
	"github.com/buddhist-uni/big-imgs/internal/env"
	"github.com/buddhist-uni/big-imgs/internal/magick"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("big-imgs", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
big-imgs - Incrementally derive sized image variants into a destination tree.

Usage:
  big-imgs [options] [GRID_PATH]

Arguments:
  GRID_PATH
    Path to the .hcl grid file declaring copies and output groups.

Options:
`)
		flagSet.PrintDefaults()
	}

	gridFlag := flagSet.String("grid", "", "Path to the grid file.")
	gFlag := flagSet.String("g", "", "Path to the grid file (shorthand).")
	destFlag := flagSet.String("dest", "../site", "Destination root directory.")
	dFlag := flagSet.String("d", "", "Destination root directory (shorthand).")
	coresFlag := flagSet.Int("cores", 0, "Number of concurrent engine invocations. 0 uses all CPUs.")
	cFlag := flagSet.Int("c", 0, "Number of concurrent engine invocations (shorthand).")
	removeOldFlag := flagSet.Bool("remove-old", false, "Delete destination files no current source produces.")
	rFlag := flagSet.Bool("r", false, "Delete old destination files (shorthand).")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print every action and command without executing anything.")
	verboseFlag := flagSet.Bool("verbose", false, "Echo actions as they are taken and engine output as it arrives.")
	magickFlag := flagSet.String("magick", env.Get("BIGIMGS_MAGICK_BIN", magick.DefaultBin), "ImageMagick-compatible binary to invoke.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := "big-imgs.hcl"
	if *gridFlag != "" {
		path = *gridFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Grid path determined.", "path", path)

	dest := *destFlag
	if *dFlag != "" {
		dest = *dFlag
	}

	workers := *coresFlag
	if *cFlag != 0 {
		workers = *cFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GridPath:  path,
		DestPath:  dest,
		Workers:   workers,
		RemoveOld: *removeOldFlag || *rFlag,
		DryRun:    *dryRunFlag,
		Verbose:   *verboseFlag,
		MagickBin: *magickFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
