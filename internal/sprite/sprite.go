package sprite

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/vovakirdan/flappy-neat/internal/config"
)

var (
	birdBody = color.NRGBA{R: 250, G: 210, B: 40, A: 255}
	pipeBody = color.NRGBA{R: 90, G: 180, B: 50, A: 255}
	pipeCap  = color.NRGBA{R: 120, G: 220, B: 70, A: 255}
)

// Set holds the collision masks for one world configuration.
type Set struct {
	Bird       *Mask
	PipeTop    *Mask // flipped, cap at the bottom edge
	PipeBottom *Mask // cap at the top edge
}

// NewSet builds the masks described by cfg. Configured PNG paths are
// loaded from disk; otherwise the built-in sprites are drawn at the
// configured sizes.
func NewSet(cfg config.FlappyConfig) (*Set, error) {
	birdImg := BirdImage(cfg.Bird.Width, cfg.Bird.Height)
	if cfg.Sprites.Bird != "" {
		img, err := loadSized(cfg.Sprites.Bird, cfg.Bird.Width, cfg.Bird.Height)
		if err != nil {
			return nil, err
		}
		birdImg = img
	}

	pipeImg := PipeImage(cfg.Pipe.Width, cfg.Pipe.Height)
	if cfg.Sprites.Pipe != "" {
		img, err := loadSized(cfg.Sprites.Pipe, cfg.Pipe.Width, cfg.Pipe.Height)
		if err != nil {
			return nil, err
		}
		pipeImg = img
	}

	bottom := FromImage(pipeImg)
	return &Set{
		Bird:       FromImage(birdImg),
		PipeBottom: bottom,
		PipeTop:    bottom.FlipVertical(),
	}, nil
}

// loadSized loads a PNG that must match the configured sprite size.
// Pipe placement, bounds and culling all use the configured size, so a
// sprite of another size would no longer line up with its mask.
func loadSized(path string, w, h int) (image.Image, error) {
	img, err := LoadPNG(path)
	if err != nil {
		return nil, err
	}
	if size := img.Bounds().Size(); size.X != w || size.Y != h {
		return nil, fmt.Errorf("sprite: %s is %dx%d, config expects %dx%d", path, size.X, size.Y, w, h)
	}
	return img, nil
}

// LoadPNG decodes a PNG sprite from disk.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sprite: cannot open %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("sprite: cannot decode %s: %w", path, err)
	}
	return img, nil
}

// BirdImage draws the built-in bird: a filled ellipse touching all four
// edges, transparent in the corners.
func BirdImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rx, ry := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := (float64(x) + 0.5 - rx) / rx
			ny := (float64(y) + 0.5 - ry) / ry
			if nx*nx+ny*ny <= 1 {
				img.SetNRGBA(x, y, birdBody)
			}
		}
	}
	return img
}

// PipeImage draws the built-in pipe oriented as a bottom pipe: a
// full-width cap on top of a narrower body.
func PipeImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	inset := w / 12
	capH := max(h/20, 1)
	draw.Draw(img, image.Rect(inset, 0, w-inset, h), image.NewUniform(pipeBody), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, w, capH), image.NewUniform(pipeCap), image.Point{}, draw.Src)
	return img
}
