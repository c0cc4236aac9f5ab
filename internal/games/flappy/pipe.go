package flappy

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// Pipe is a pair of obstacles with a gap between them.
type Pipe struct {
	X      float64
	Height float64 // Y of the gap's top edge
	Top    float64 // Y of the top pipe sprite (Height - sprite height)
	Bottom float64 // Y of the bottom pipe sprite (gap's bottom edge)
	Passed bool

	cfg   config.PipeConfig
	masks *sprite.Set
}

// NewPipe creates a pipe at x with a gap drawn from [MinHeight, MaxHeight).
func NewPipe(x float64, rng *rand.Rand, cfg config.PipeConfig, masks *sprite.Set) *Pipe {
	h := cfg.MinHeight + rng.Intn(cfg.MaxHeight-cfg.MinHeight)
	return NewPipeAt(x, float64(h), cfg, masks)
}

// NewPipeAt creates a pipe at x whose gap starts at height.
func NewPipeAt(x, height float64, cfg config.PipeConfig, masks *sprite.Set) *Pipe {
	return &Pipe{
		X:      x,
		Height: height,
		Top:    height - float64(cfg.Height),
		Bottom: height + cfg.Gap,
		cfg:    cfg,
		masks:  masks,
	}
}

// Move scrolls the pipe left by one tick.
func (p *Pipe) Move() {
	p.X -= p.cfg.Velocity
}

// OffScreen reports whether the pipe has fully left the playfield.
func (p *Pipe) OffScreen() bool {
	return p.X+float64(p.cfg.Width) < 0
}

// Collide reports whether the bird's silhouette overlaps either half of
// the pipe at their current positions.
func (p *Pipe) Collide(b *Bird) bool {
	dx := int(math.RoundToEven(p.X - b.X))
	by := b.PixelY()
	topOffset := int(math.RoundToEven(p.Top)) - by
	bottomOffset := int(math.RoundToEven(p.Bottom)) - by

	bird := b.Mask()
	return bird.Overlap(p.masks.PipeBottom, dx, bottomOffset) ||
		bird.Overlap(p.masks.PipeTop, dx, topOffset)
}

// State returns a copy of the pipe's visible state.
func (p *Pipe) State() PipeState {
	return PipeState{X: p.X, Height: p.Height, Bottom: p.Bottom, Passed: p.Passed}
}
