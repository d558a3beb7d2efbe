// Package syncdir reconciles the destination tree with the set of output
// paths the current run declared. Each group run returns the paths it
// touched; the aggregated set drives pruning of everything the run no
// longer produces, and CopyIfDifferent keeps static auxiliary files in
// sync without rewriting identical content.
package syncdir

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/buddhist-uni/big-imgs/internal/actions"
)

// TouchSet is the set of absolute destination paths a run expects to exist
// by its end. Paths present in the destination before the run but never
// touched are orphaned.
type TouchSet map[string]struct{}

// NewTouchSet returns an empty touch set.
func NewTouchSet() TouchSet {
	return make(TouchSet)
}

// Touch marks a path and all of its ancestors as live.
func (t TouchSet) Touch(path string) {
	path = filepath.Clean(path)
	for {
		if _, ok := t[path]; ok {
			return
		}
		t[path] = struct{}{}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

// Merge folds another touch set into this one.
func (t TouchSet) Merge(other TouchSet) {
	for p := range other {
		t[p] = struct{}{}
	}
}

// Contains reports whether the exact path was touched.
func (t TouchSet) Contains(path string) bool {
	_, ok := t[filepath.Clean(path)]
	return ok
}

// Pruner snapshots the destination tree before any group runs, then
// deletes whatever the run did not touch.
type Pruner struct {
	root  string
	paths []string
}

// NewPruner records every path currently under root (root itself
// excluded). A missing root yields an empty snapshot.
func NewPruner(root string) (*Pruner, error) {
	p := &Pruner{root: filepath.Clean(root)}
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if filepath.Clean(path) == p.root {
			return nil
		}
		p.paths = append(p.paths, filepath.Clean(path))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("snapshotting %s: %w", root, err)
	}
	sort.Strings(p.paths)
	return p, nil
}

// Prune removes every snapshotted path absent from touched. Untouched
// directories are removed recursively and their descendants skipped; files
// are removed individually.
func (p *Pruner) Prune(act *actions.Actions, touched TouchSet) error {
	var skipPrefix string
	for _, path := range p.paths {
		if skipPrefix != "" && strings.HasPrefix(path, skipPrefix) {
			continue
		}
		if touched.Contains(path) {
			continue
		}

		info, err := os.Lstat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if info.IsDir() {
			skipPrefix = path + string(filepath.Separator)
			if err := act.Do(fmt.Sprintf("rm -rf %s", path), func() error {
				return os.RemoveAll(path)
			}); err != nil {
				return fmt.Errorf("pruning %s: %w", path, err)
			}
			continue
		}
		if err := act.Do(fmt.Sprintf("rm %s", path), func() error {
			return os.Remove(path)
		}); err != nil {
			return fmt.Errorf("pruning %s: %w", path, err)
		}
	}
	return nil
}

// CopyIfDifferent syncs one static file into the destination tree. An
// existing byte-identical destination is left alone; a differing one is
// deleted and recopied. The destination is touched either way.
func CopyIfDifferent(act *actions.Actions, src, dst string, touched TouchSet) error {
	srcData, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	touched.Touch(dst)
	if dstData, err := os.ReadFile(dst); err == nil {
		if bytes.Equal(srcData, dstData) {
			act.Say(fmt.Sprintf("%s: already correct", dst))
			return nil
		}
		if err := act.Do(fmt.Sprintf("rm %s", dst), func() error {
			return os.Remove(dst)
		}); err != nil {
			return err
		}
	}

	return act.Do(fmt.Sprintf("cp %s %s", src, dst), func() error {
		return os.WriteFile(dst, srcData, 0o644)
	})
}
