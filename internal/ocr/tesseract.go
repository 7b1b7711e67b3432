// Package ocr wraps the Tesseract engine (via gosseract/v2) as the
// text-recognition collaborator of the detection subsystem.
//
// Tesseract is an optional dependency: Probe performs a one-time capability
// check at startup, and callers that find it unavailable simply run without
// the OCR fallback. Recognition errors are recoverable by design; the
// detection orchestrator treats them like a miss.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"deskscribe/internal/detection"
)

// DefaultLanguage is the Tesseract language code used when none is given.
const DefaultLanguage = "eng"

// Tesseract recognizes text in images using a local Tesseract installation.
// It implements detection.Recognizer. A fresh gosseract client is created
// per call, so a single Tesseract value is safe for concurrent use.
type Tesseract struct {
	language string
}

// NewTesseract returns a recognizer for the given Tesseract language code
// (e.g. "eng"). An empty code selects DefaultLanguage.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{language: language}
}

// Recognize runs word-level OCR over the image and returns one TextHit per
// recognized word, with bounding boxes in image coordinates and confidences
// normalized to [0, 1]. Empty words are dropped.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) ([]detection.TextHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("%w: failed to set language %q: %v", detection.ErrUnavailable, t.language, err)
	}
	// Uniform block segmentation works better than full page analysis for
	// the sparse grid of desktop icon captions.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr failed: %w", err)
	}

	hits := make([]detection.TextHit, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		hits = append(hits, detection.TextHit{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: detection.Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return hits, nil
}

// Info describes the outcome of the startup capability check.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Probe checks once whether a usable Tesseract engine is present. Callers
// should run it at startup and skip constructing a recognizer when the
// engine is unavailable, rather than probing on every detection call.
func Probe() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	if version == "" {
		return Info{Available: false, Error: "tesseract library not detected"}
	}
	if err := client.SetLanguage(DefaultLanguage); err != nil {
		return Info{Available: false, Version: version,
			Error: fmt.Sprintf("language data missing: %v", err)}
	}
	return Info{Available: true, Version: version}
}
