// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
)

// ListFiles returns the regular files directly under root, sorted by name.
// Subdirectories are ignored.
func ListFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(root, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ListNestedFiles returns the regular files exactly one subdirectory below
// root (the "<root>/*/*" layout used by groups organized into subfolders),
// sorted by path. Files directly under root are ignored.
func ListNestedFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := ListFiles(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}
	sort.Strings(files)
	return files, nil
}
