package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"os"
)

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// LoadImage opens and decodes an image file.
//
// Supported formats are PNG, JPEG, and GIF. The decoded image is validated
// to be non-empty; a zero-area image is a caller bug and returns
// ErrEmptyImage.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}

	return img, nil
}

// SavePNG writes an image to disk as PNG, creating the file if needed.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
