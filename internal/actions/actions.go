// Package actions gates filesystem side effects behind the run's dry-run
// and verbose settings. Every mutation of the destination tree goes through
// Do, so a dry run prints the same action log a verbose real run would,
// without taking any of the actions.
package actions

import (
	"fmt"
	"io"
)

// Actions describes how destination mutations are performed and reported.
type Actions struct {
	DryRun  bool
	Verbose bool
	// Out receives the "-<description>" echo lines. It is the operator's
	// output stream, not the structured log.
	Out io.Writer
}

// Do performs fn unless this is a dry run. The description is echoed when
// either verbose or dry-run is set.
func (a *Actions) Do(description string, fn func() error) error {
	if a.Verbose || a.DryRun {
		fmt.Fprintf(a.Out, "-%s\n", description)
	}
	if a.DryRun {
		return nil
	}
	return fn()
}

// Say echoes an informational line when verbose is set, independent of
// dry-run.
func (a *Actions) Say(line string) {
	if a.Verbose {
		fmt.Fprintln(a.Out, line)
	}
}
