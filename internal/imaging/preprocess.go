package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ToGray converts an image to a normalized luminance matrix.
//
// The result is indexed [y][x] with values in [0, 1], computed from RGB
// using ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B). This is the
// representation the template matcher operates on.
func ToGray(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			gray[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return gray
}

// ResizeTemplate scales a template image proportionally by the given factor
// using Lanczos resampling. A factor of 1.0 returns a copy at the original
// size. The result is never smaller than 1x1.
func ResizeTemplate(img image.Image, scale float64) image.Image {
	w := int(float64(img.Bounds().Dx()) * scale)
	h := int(float64(img.Bounds().Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// PrepareForOCR runs the fixed preprocessing pipeline applied before text
// recognition: grayscale conversion, noise reduction with a 3x3 median
// filter, and a linear contrast stretch.
//
// The pipeline is deterministic and has no tunable state; the same input
// always produces the same output.
func PrepareForOCR(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	denoised := effect.Median(gray, 3)
	return stretchContrast(denoised)
}

// stretchContrast remaps pixel intensities so that the 1st percentile maps
// to black and the 99th percentile maps to white. Clipping the tails keeps a
// few stray dark or bright pixels from flattening the whole remap.
func stretchContrast(img *image.RGBA) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	total := width * height
	if total == 0 {
		return img
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Input is already grayscale, so R carries the intensity.
			hist[img.RGBAAt(x, y).R]++
		}
	}

	low, high := percentileBounds(hist[:], total)
	if high <= low {
		return img
	}

	out := image.NewGray(image.Rect(0, 0, width, height))
	scale := 255.0 / float64(high-low)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := int(img.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y).R)
			stretched := float64(v-low) * scale
			if stretched < 0 {
				stretched = 0
			} else if stretched > 255 {
				stretched = 255
			}
			out.Pix[y*out.Stride+x] = uint8(stretched)
		}
	}
	return out
}

// percentileBounds finds the intensities at the 1st and 99th percentile of
// a 256-bin histogram.
func percentileBounds(hist []int, total int) (low, high int) {
	lowTarget := total / 100
	highTarget := total - total/100

	seen := 0
	low = 0
	for i, n := range hist {
		seen += n
		if seen > lowTarget {
			low = i
			break
		}
	}

	seen = 0
	high = 255
	for i, n := range hist {
		seen += n
		if seen >= highTarget {
			high = i
			break
		}
	}
	return low, high
}
