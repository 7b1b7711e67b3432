package detection

import "image"

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width returns the horizontal extent in pixels.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent in pixels.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Center returns the geometric center of the box.
func (b Bounds) Center() image.Point {
	return image.Pt((b.X1+b.X2)/2, (b.Y1+b.Y2)/2)
}

// MatchCandidate is the result of one scale-specific template search:
// the position of maximum similarity, the scale factor that produced it,
// and a normalized confidence score.
type MatchCandidate struct {
	// Location is the top-left pixel coordinate of the matched region.
	Location image.Point `json:"location"`

	// Scale is the template resize factor that produced this candidate.
	Scale float64 `json:"scale"`

	// Confidence is the normalized cross-correlation score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Width and Height are the dimensions of the scaled template, i.e.
	// the extent of the matched region.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center of the matched region.
func (c MatchCandidate) Center() image.Point {
	return image.Pt(c.Location.X+c.Width/2, c.Location.Y+c.Height/2)
}

// TextHit is one recognized text fragment: its bounding box, the recognized
// string, and the recognizer's confidence (0.0 to 1.0).
type TextHit struct {
	Bounds     Bounds  `json:"bounds"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Method identifies which strategy produced a detection result.
type Method string

const (
	// MethodTemplate marks a result produced by template matching.
	MethodTemplate Method = "template"

	// MethodOCR marks a result produced by the text-recognition fallback.
	// OCR positions are estimated from the caption location and carry
	// lower trust than template matches.
	MethodOCR Method = "ocr"
)

// Result is the orchestrator's output: either a resolved icon center with
// the method that produced it, or a terminal not-found outcome after
// exhausting retries.
type Result struct {
	// Found reports whether the icon was located.
	Found bool `json:"found"`

	// Method is the strategy that resolved the position. Empty when
	// Found is false.
	Method Method `json:"method,omitempty"`

	// Position is the estimated icon center. Meaningful only when Found.
	Position image.Point `json:"position"`

	// Confidence of the resolved result (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Attempts is the number of capture attempts made.
	Attempts int `json:"attempts"`

	// BestConfidence is the highest template-match confidence observed
	// across all attempts, reported even on a not-found outcome to aid
	// debugging.
	BestConfidence float64 `json:"best_confidence"`
}
