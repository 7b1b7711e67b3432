// Package imaging provides the pixel-level primitives used by the detection
// subsystem: image loading, grayscale conversion, the deterministic OCR
// preprocessing pipeline, template resizing, and diagnostic annotation.
//
// All functions are pure with respect to their image inputs; none of them
// mutates a caller-supplied image.
package imaging
