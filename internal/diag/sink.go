// Package diag provides the diagnostic sink collaborator: best-effort
// storage for annotated detection screenshots.
package diag

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"deskscribe/internal/imaging"
)

// DirSink writes annotated screenshots as timestamped PNG files into one
// directory. It implements detection.Sink.
type DirSink struct {
	dir string
}

// NewDirSink creates the directory if needed and returns a sink writing
// into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Save writes the image as <name>_<unix-nano>.png. The timestamp keeps
// repeated attempts from overwriting each other.
func (s *DirSink) Save(img image.Image, name string) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.png", name, time.Now().UnixNano()))
	return imaging.SavePNG(img, path)
}

// Discard is a sink that drops every image. Useful when diagnostics are
// disabled but a non-nil sink is convenient.
type Discard struct{}

// Save does nothing.
func (Discard) Save(image.Image, string) error { return nil }
