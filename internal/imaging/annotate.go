package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default annotation colors, overridable per call via hex strings.
const (
	defaultBoxHex    = "#00ff00"
	defaultCenterHex = "#ff0000"
)

// Annotation describes a detection overlay to draw onto a screenshot copy.
type Annotation struct {
	// Center is the resolved (or best-candidate) position.
	Center image.Point

	// Width and Height set the box drawn around Center. Zero values fall
	// back to a 50x50 box.
	Width  int
	Height int

	// Label is drawn above the box, together with the confidence.
	Label string

	// Confidence in [0,1], appended to the label.
	Confidence float64

	// BoxColor and CenterColor are optional "#rrggbb" overrides.
	BoxColor    string
	CenterColor string
}

// Annotate draws a bounding box, a center dot, and a caption onto a copy of
// the image. The input image is not modified.
func Annotate(img image.Image, a Annotation) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)

	w := a.Width
	if w <= 0 {
		w = 50
	}
	h := a.Height
	if h <= 0 {
		h = 50
	}

	boxCol := parseHex(a.BoxColor, defaultBoxHex)
	centerCol := parseHex(a.CenterColor, defaultCenterHex)

	bounds := out.Bounds()
	x1 := max(bounds.Min.X, a.Center.X-w/2)
	y1 := max(bounds.Min.Y, a.Center.Y-h/2)
	x2 := min(bounds.Max.X-1, a.Center.X+w/2)
	y2 := min(bounds.Max.Y-1, a.Center.Y+h/2)

	drawRect(out, x1, y1, x2, y2, boxCol, 2)
	drawDot(out, a.Center.X, a.Center.Y, 4, centerCol)

	caption := a.Label
	if caption != "" {
		caption = fmt.Sprintf("%s (%.2f)", a.Label, a.Confidence)
		textY := y1 - 6
		if textY < bounds.Min.Y+basicfont.Face7x13.Height {
			textY = y2 + basicfont.Face7x13.Height + 6
		}
		drawString(out, x1, textY, caption, boxCol)
	}

	return out
}

// parseHex parses a "#rrggbb" color, falling back when the string is empty
// or malformed.
func parseHex(hex, fallback string) color.Color {
	if hex == "" {
		hex = fallback
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(fallback)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawRect draws an axis-aligned rectangle outline with the given stroke
// thickness, clipped to the image bounds.
func drawRect(img *image.RGBA, x1, y1, x2, y2 int, col color.Color, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			setClipped(img, x, y1+t, col)
			setClipped(img, x, y2-t, col)
		}
		for y := y1; y <= y2; y++ {
			setClipped(img, x1+t, y, col)
			setClipped(img, x2-t, y, col)
		}
	}
}

// drawDot fills a small disc at the given point.
func drawDot(img *image.RGBA, cx, cy, radius int, col color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setClipped(img, cx+dx, cy+dy, col)
			}
		}
	}
}

// drawString renders text with the fixed 7x13 basic font.
func drawString(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func setClipped(img *image.RGBA, x, y int, col color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, col)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
