package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/buddhist-uni/big-imgs/internal/app"
	"github.com/buddhist-uni/big-imgs/internal/cli"
	"github.com/buddhist-uni/big-imgs/internal/env"
)

// main is the entrypoint for the big-imgs application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	env.Load()

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors, so we recover here to turn
	// them into a clean exit message for the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	bigImgsApp := app.NewApp(outW, appConfig, nil)
	return bigImgsApp.Run(context.Background())
}
