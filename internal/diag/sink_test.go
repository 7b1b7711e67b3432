package diag

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), A: 255})
		}
	}
	return img
}

func TestDirSink_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diag")
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}

	if err := sink.Save(testImage(), "detection_attempt"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := sink.Save(testImage(), "detection_attempt"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d files, want 2 (timestamps must not collide)", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "detection_attempt_") || !strings.HasSuffix(e.Name(), ".png") {
			t.Errorf("unexpected file name %q", e.Name())
		}
	}
}

func TestNewDirSink_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A regular file where the directory should go.
	if _, err := NewDirSink(filepath.Join(file, "sub")); err == nil {
		t.Fatal("expected error when the directory cannot be created")
	}
}

func TestDiscard(t *testing.T) {
	if err := (Discard{}).Save(testImage(), "anything"); err != nil {
		t.Fatalf("Discard.Save: %v", err)
	}
}
