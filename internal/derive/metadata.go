package derive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
)

// MetadataFilename is the per-group cache file, stored inside the group's
// destination subtree.
const MetadataFilename = "metadata.json"

// ImageEntry is the per-image invalidation data carried by groups with
// focal points. Center is the (x%, y%) focal coordinate.
type ImageEntry struct {
	Center [2]float64 `json:"center"`
}

// Metadata is the persisted cache state of one output group. Version is a
// monotonically increasing cache generation; ImageData, when present,
// invalidates individual images whose focal data changed.
type Metadata struct {
	Version   int                   `json:"version"`
	ImageData map[string]ImageEntry `json:"image_data,omitempty"`
}

// LoadMetadata reads a group's cache file. Missing or unparsable metadata
// is never fatal: it degrades to version 0, which invalidates everything.
func LoadMetadata(ctx context.Context, path string) *Metadata {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Metadata unreadable, regenerating everything.", "path", path, "error", err)
		}
		return &Metadata{Version: 0}
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("Metadata corrupt, regenerating everything.", "path", path, "error", err)
		return &Metadata{Version: 0}
	}
	return &m
}

// Save persists the metadata atomically from the reader's perspective:
// written to a temp file in the same directory, then renamed into place.
func (m *Metadata) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// LoadImageData reads the per-image focal point file of a group's source
// root. Unlike metadata, this is configuration: failures are fatal.
func LoadImageData(path string) (map[string]ImageEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading focal data: %w", err)
	}
	var entries map[string]ImageEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing focal data %s: %w", path, err)
	}
	return entries, nil
}
