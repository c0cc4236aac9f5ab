package sprite

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
)

func TestFromImageAlphaThreshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 127})
	img.SetNRGBA(1, 0, color.NRGBA{A: 128})
	img.SetNRGBA(2, 0, color.NRGBA{A: 255})

	m := FromImage(img)
	if m.At(0, 0) {
		t.Error("alpha 127 should be transparent")
	}
	if !m.At(1, 0) || !m.At(2, 0) {
		t.Error("alpha above 127 should be solid")
	}
	if got := m.Bounds(); got != core.NewRect(1, 0, 2, 1) {
		t.Errorf("Bounds() = %+v, expected {1 0 2 1}", got)
	}
}

func TestEmptyMaskNeverOverlaps(t *testing.T) {
	empty := NewMask(10, 10)
	full := FromImage(PipeImage(10, 10))

	if empty.Overlap(full, 0, 0) || full.Overlap(empty, 0, 0) {
		t.Error("a mask with no solid pixels must not overlap anything")
	}
}

func TestOverlap(t *testing.T) {
	bird := FromImage(BirdImage(68, 48))

	tests := []struct {
		name     string
		dx, dy   int
		expected bool
	}{
		{"same position", 0, 0, true},
		{"shifted inside", 10, 5, true},
		{"far right", 200, 0, false},
		{"touching edge", 68, 0, false},
		{"transparent corners only", 66, 46, false},
		{"far above", 0, -100, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := bird.Overlap(bird, tc.dx, tc.dy); got != tc.expected {
				t.Errorf("Overlap(%d, %d) = %v, expected %v", tc.dx, tc.dy, got, tc.expected)
			}
		})
	}
}

func TestOverlapIsSymmetric(t *testing.T) {
	bird := FromImage(BirdImage(68, 48))
	pipe := FromImage(PipeImage(104, 640))

	offsets := [][2]int{{-50, -10}, {-100, 30}, {-110, 0}, {20, -600}, {0, 47}}
	for _, off := range offsets {
		a := bird.Overlap(pipe, off[0], off[1])
		b := pipe.Overlap(bird, -off[0], -off[1])
		if a != b {
			t.Errorf("Overlap asymmetric at %v: %v vs %v", off, a, b)
		}
	}
}

func TestBirdImageShape(t *testing.T) {
	m := FromImage(BirdImage(68, 48))

	if m.Width() != 68 || m.Height() != 48 {
		t.Fatalf("size = %dx%d, expected 68x48", m.Width(), m.Height())
	}
	if got := m.Bounds(); got != core.NewRect(0, 0, 68, 48) {
		t.Errorf("Bounds() = %+v, expected full sprite", got)
	}
	if m.At(0, 0) || m.At(67, 47) {
		t.Error("ellipse corners should be transparent")
	}
	if !m.At(34, 24) {
		t.Error("ellipse center should be solid")
	}
}

func TestPipeImageAndFlip(t *testing.T) {
	bottom := FromImage(PipeImage(104, 640))
	top := bottom.FlipVertical()

	// The cap spans the full width, the body is inset.
	if !bottom.At(0, 0) {
		t.Error("bottom pipe cap should start at the top-left pixel")
	}
	if bottom.At(0, 639) {
		t.Error("bottom pipe body should be inset from the left edge")
	}
	if !top.At(0, 639) || top.At(0, 0) {
		t.Error("flipped pipe should have its cap at the bottom edge")
	}
	if top.Count() != bottom.Count() {
		t.Errorf("Count() after flip = %d, expected %d", top.Count(), bottom.Count())
	}
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sprite.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return path
}

func TestNewSetLoadsPNG(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	cfg.Sprites.Bird = writePNG(t, BirdImage(cfg.Bird.Width, cfg.Bird.Height))

	set, err := NewSet(cfg)
	if err != nil {
		t.Fatalf("NewSet() failed: %v", err)
	}
	if set.Bird.Width() != 68 || set.Bird.Height() != 48 {
		t.Errorf("bird mask = %dx%d, expected 68x48", set.Bird.Width(), set.Bird.Height())
	}
	if set.PipeBottom.Height() != 640 {
		t.Errorf("pipe mask height = %d, expected 640", set.PipeBottom.Height())
	}
}

func TestNewSetRejectsMismatchedPNG(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	cfg.Sprites.Pipe = writePNG(t, PipeImage(52, 320))
	if _, err := NewSet(cfg); err == nil {
		t.Error("NewSet() accepted a 52x320 pipe sprite for a 104x640 pipe")
	}

	cfg = config.DefaultFlappyConfig()
	cfg.Sprites.Bird = writePNG(t, BirdImage(20, 10))
	if _, err := NewSet(cfg); err == nil {
		t.Error("NewSet() accepted a 20x10 bird sprite for a 68x48 bird")
	}
}

func TestNewSetMissingPNG(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	cfg.Sprites.Pipe = filepath.Join(t.TempDir(), "missing.png")

	if _, err := NewSet(cfg); err == nil {
		t.Error("NewSet() with missing sprite should fail")
	}
}
