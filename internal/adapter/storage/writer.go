package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DirPrefix starts every per-analysis directory name
const DirPrefix = "multi_model_explainable_ai_"

// Writer persists analysis artifacts in one directory per analysis
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at dir
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// DirName returns the directory name of one analysis
func DirName(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s%s_%s", DirPrefix, at.Format("20060102_150405"), id.String()[:8])
}

// Write stores files under a fresh analysis directory and returns its path.
// Files are written in name order.
func (w *Writer) Write(at time.Time, id uuid.UUID, files map[string][]byte) (string, error) {
	dir := filepath.Join(w.root, DirName(at, id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if filepath.Base(name) != name {
			return dir, fmt.Errorf("invalid artifact name %q", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0o644); err != nil {
			return dir, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return dir, nil
}
