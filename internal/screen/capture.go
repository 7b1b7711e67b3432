// Package screen implements the screen-capture collaborator on top of the
// cross-platform screenshot library.
package screen

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Display captures screenshots of one physical display. It implements
// detection.Capturer.
type Display struct {
	index int
}

// PrimaryDisplay returns a capturer for display 0, or an error when no
// active display is attached (headless session).
func PrimaryDisplay() (*Display, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	return &Display{index: 0}, nil
}

// Capture grabs a full-resolution screenshot of the display. The capture
// itself is synchronous; the context is only consulted before starting.
func (d *Display) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := screenshot.GetDisplayBounds(d.index)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

// Bounds reports the display's pixel bounds.
func (d *Display) Bounds() image.Rectangle {
	return screenshot.GetDisplayBounds(d.index)
}
