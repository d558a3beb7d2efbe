package derive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/buddhist-uni/big-imgs/internal/actions"
	"github.com/buddhist-uni/big-imgs/internal/config"
	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
	"github.com/buddhist-uni/big-imgs/internal/executor"
	"github.com/buddhist-uni/big-imgs/internal/fsutil"
	"github.com/buddhist-uni/big-imgs/internal/magick"
	"github.com/buddhist-uni/big-imgs/internal/syncdir"
)

// Runner executes one output group end to end: validate the source tree,
// prepare the destination, probe and filter every source image, dispatch
// the stale ones, and persist the group's metadata on success.
type Runner struct {
	Config *config.Group
	// DestRoot is the absolute destination root; the group writes into
	// Config.Dest below it.
	DestRoot string
	// Options are the shared engine encode options of every pipeline.
	Options []string
	Prober  magick.Prober
	Pool    *executor.Pool
	Actions *actions.Actions
}

// Result reports what one group run touched and changed. The orchestrator
// aggregates Touched sets across groups for pruning; no shared mutable
// state is involved.
type Result struct {
	Touched syncdir.TouchSet
	// Modified holds the absolute paths of every output (re)generated this
	// run.
	Modified []string
}

// Run drives the group to completion. Any error other than unreadable
// metadata is fatal for the whole run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	logger := ctxlog.FromContext(ctx).With("group", cfg.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	source := cfg.Source
	dest := filepath.Join(r.DestRoot, cfg.Dest)
	logger.Info("Group starting.", "source", source, "dest", dest)

	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("group %s: source %s is not a directory", cfg.Name, source)
	}

	metadataPath := filepath.Join(dest, MetadataFilename)
	prev := LoadMetadata(ctx, metadataPath)

	touched := syncdir.NewTouchSet()
	if err := r.prepareDest(dest, touched); err != nil {
		return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
	}

	var focal map[string]ImageEntry
	if cfg.FocalData != "" {
		var err error
		focal, err = LoadImageData(filepath.Join(source, cfg.FocalData))
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
		}
	}
	next := &Metadata{Version: cfg.Version, ImageData: focal}

	plan, err := NewPlanner(cfg, focal)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
	}

	files, err := r.sourceFiles(source)
	if err != nil {
		return nil, fmt.Errorf("group %s: listing sources: %w", cfg.Name, err)
	}

	result := &Result{Touched: touched}
	var invocations []*executor.Invocation
	for _, file := range files {
		rel, err := filepath.Rel(source, file)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
		}

		width, height, err := r.Prober.Probe(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
		}

		variants, err := plan(rel, width, height)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
		}

		// Validity is checked per output path, but regeneration happens per
		// image: one stale variant re-decodes the image and rewrites all of
		// its variants, since later variants may build on earlier buffers.
		cacheValid := r.cacheValid(prev, next, rel)
		stale := false
		outs := make([]string, 0, len(variants))
		for i := range variants {
			out := filepath.Join(dest, variants[i].OutPath)
			outs = append(outs, out)
			touched.Touch(out)
			if !cacheValid || !fileExists(out) {
				stale = true
			}
			variants[i].OutPath = out
		}
		if !stale {
			continue
		}

		result.Modified = append(result.Modified, outs...)
		invocations = append(invocations, &executor.Invocation{
			Source: file,
			Group:  cfg.Name,
			Argv:   magick.Compile(file, r.Options, variants),
		})
	}

	if len(invocations) == 0 {
		logger.Info("Nothing to do.")
	} else {
		err := r.Pool.Run(ctx, invocations, func(res *executor.Result) error {
			logger.Info("Engine invocation finished.", "source", res.Invocation.Source, "ok", res.Err == nil)
			if r.Actions.Verbose || res.Err != nil {
				r.Actions.Out.Write(res.Output)
			}
			if res.Err != nil {
				return fmt.Errorf("group %s: %w", cfg.Name, res.Err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	touched.Touch(metadataPath)
	if err := r.Actions.Do(fmt.Sprintf("write %s", metadataPath), func() error {
		return next.Save(metadataPath)
	}); err != nil {
		return nil, fmt.Errorf("group %s: %w", cfg.Name, err)
	}

	logger.Info("Group finished.", "images", len(files), "regenerated", len(invocations))
	return result, nil
}

// prepareDest ensures the group destination is a directory. A non-directory
// in the way is removed with a warning rather than failing the run.
func (r *Runner) prepareDest(dest string, touched syncdir.TouchSet) error {
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		if err := r.Actions.Do(fmt.Sprintf("rm %s", dest), func() error {
			return os.Remove(dest)
		}); err != nil {
			return err
		}
		fmt.Fprintf(r.Actions.Out, "Warning! %s was not a directory (and was overwritten)\n", dest)
	}
	touched.Touch(dest)
	return r.Actions.Do(fmt.Sprintf("mkdir -p %s", dest), func() error {
		return os.MkdirAll(dest, 0o755)
	})
}

// sourceFiles enumerates the group's source images, excluding the focal
// data file itself.
func (r *Runner) sourceFiles(source string) ([]string, error) {
	var files []string
	var err error
	if r.Config.Nested {
		files, err = fsutil.ListNestedFiles(source)
	} else {
		files, err = fsutil.ListFiles(source)
	}
	if err != nil {
		return nil, err
	}

	if r.Config.FocalData == "" {
		return files, nil
	}
	kept := files[:0]
	for _, f := range files {
		if filepath.Base(f) != r.Config.FocalData {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// cacheValid reports whether outputs of the given image may be trusted:
// the persisted version must cover the configured one, and for groups with
// focal data the persisted focal point must match the current one.
func (r *Runner) cacheValid(prev, next *Metadata, rel string) bool {
	if prev.Version < r.Config.Version {
		return false
	}
	if next.ImageData == nil {
		return true
	}
	name := filepath.Base(rel)
	prevEntry, ok := prev.ImageData[name]
	return ok && prevEntry == next.ImageData[name]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
