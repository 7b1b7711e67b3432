package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// newCaptionImage renders text on a white background, roughly how a desktop
// icon caption looks after preprocessing.
func newCaptionImage(text string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 320, 80))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(40), Y: fixed.I(40)},
	}
	d.DrawString(text)
	return img
}

func requireTesseract(t *testing.T) {
	t.Helper()
	info := Probe()
	if !info.Available {
		t.Skipf("tesseract not available: %s", info.Error)
	}
}

func TestNewTesseract_DefaultLanguage(t *testing.T) {
	rec := NewTesseract("")
	if rec.language != DefaultLanguage {
		t.Errorf("language = %q, want %q", rec.language, DefaultLanguage)
	}

	rec = NewTesseract("deu")
	if rec.language != "deu" {
		t.Errorf("language = %q, want deu", rec.language)
	}
}

func TestRecognize_FindsRenderedWord(t *testing.T) {
	requireTesseract(t)

	rec := NewTesseract("")
	hits, err := rec.Recognize(context.Background(), newCaptionImage("Notepad"))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	found := false
	for _, h := range hits {
		if strings.Contains(strings.ToLower(h.Text), "notepad") {
			found = true
			if h.Confidence < 0 || h.Confidence > 1 {
				t.Errorf("confidence %v outside [0, 1]", h.Confidence)
			}
			if h.Bounds.X2 <= h.Bounds.X1 || h.Bounds.Y2 <= h.Bounds.Y1 {
				t.Errorf("degenerate bounds %+v", h.Bounds)
			}
		}
	}
	if !found {
		t.Errorf("rendered word not recognized; hits: %+v", hits)
	}
}

func TestRecognize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := NewTesseract("")
	_, err := rec.Recognize(ctx, newCaptionImage("Notepad"))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRecognize_EmptyImage(t *testing.T) {
	requireTesseract(t)

	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec := NewTesseract("")
	hits, err := rec.Recognize(ctx, img)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	for _, h := range hits {
		if strings.TrimSpace(h.Text) != "" {
			t.Errorf("unexpected text %q on a blank image", h.Text)
		}
	}
}

func TestProbe_Reported(t *testing.T) {
	info := Probe()
	if info.Available && info.Version == "" {
		t.Error("available engine must report a version")
	}
	if !info.Available && info.Error == "" {
		t.Error("unavailable engine must report a reason")
	}
}
