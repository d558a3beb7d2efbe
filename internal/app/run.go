package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/buddhist-uni/big-imgs/internal/actions"
	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
	"github.com/buddhist-uni/big-imgs/internal/derive"
	"github.com/buddhist-uni/big-imgs/internal/executor"
	"github.com/buddhist-uni/big-imgs/internal/magick"
	"github.com/buddhist-uni/big-imgs/internal/syncdir"
)

// ModifiedFilename is the run report listing every output written this run,
// one destination-relative path per line. It is only written when something
// changed, and never counts as a touched path itself.
const ModifiedFilename = "modified_files.txt"

// Run executes the whole pipeline: destination preparation, static copies,
// every group in declaration order, pruning, and the modified-files report.
// Groups run sequentially; concurrency lives inside the shared worker pool.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	dest, err := filepath.Abs(a.config.DestPath)
	if err != nil {
		return fmt.Errorf("resolving destination %s: %w", a.config.DestPath, err)
	}
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		return fmt.Errorf("destination %s exists and is not a directory", dest)
	}
	a.logger.Info("Run starting.", "dest", dest, "workers", a.config.Workers, "dryRun", a.config.DryRun)

	act := &actions.Actions{
		DryRun:  a.config.DryRun,
		Verbose: a.config.Verbose,
		Out:     a.outW,
	}

	// Snapshot before anything mutates the tree, so stale paths created by
	// earlier runs are candidates even if this run recreates their parents.
	var pruner *syncdir.Pruner
	if a.config.RemoveOld {
		pruner, err = syncdir.NewPruner(dest)
		if err != nil {
			return err
		}
	}

	touched := syncdir.NewTouchSet()
	touched.Touch(dest)
	if err := act.Do(fmt.Sprintf("mkdir -p %s", dest), func() error {
		return os.MkdirAll(dest, 0o755)
	}); err != nil {
		return fmt.Errorf("creating destination %s: %w", dest, err)
	}

	for _, c := range a.model.Copies {
		if err := syncdir.CopyIfDifferent(act, c.Source, filepath.Join(dest, c.To), touched); err != nil {
			return err
		}
	}

	options := a.model.Options
	if options == nil {
		options = magick.DefaultOptions()
	}

	pool := executor.NewPool(a.config.Workers, a.engine.Runner)
	pool.DryRun = a.config.DryRun
	pool.Echo = func(inv *executor.Invocation) {
		fmt.Fprintf(a.outW, "-%s\n", magick.CommandString(a.config.MagickBin, inv.Argv))
	}

	var modified []string
	for _, group := range a.model.Groups {
		runner := &derive.Runner{
			Config:   group,
			DestRoot: dest,
			Options:  options,
			Prober:   a.engine.Prober,
			Pool:     pool,
			Actions:  act,
		}
		res, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		touched.Merge(res.Touched)
		modified = append(modified, res.Modified...)
	}

	if pruner != nil {
		if err := pruner.Prune(act, touched); err != nil {
			return err
		}
	}

	if err := a.writeModified(act, dest, modified); err != nil {
		return err
	}

	a.logger.Info("Run finished.", "groups", len(a.model.Groups), "modified", len(modified))
	return nil
}

// writeModified records the run's regenerated outputs relative to dest. The
// report is written after pruning so a prune never deletes it, and skipped
// entirely when the run changed nothing.
func (a *App) writeModified(act *actions.Actions, dest string, modified []string) error {
	if len(modified) == 0 {
		return nil
	}

	rels := make([]string, 0, len(modified))
	for _, path := range modified {
		rel, err := filepath.Rel(dest, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	reportPath := filepath.Join(dest, ModifiedFilename)
	return act.Do(fmt.Sprintf("write %s", reportPath), func() error {
		return os.WriteFile(reportPath, []byte(strings.Join(rels, "\n")+"\n"), 0o644)
	})
}
