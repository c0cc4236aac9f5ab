// Package flappy implements the Flappy Bird world: birds, pipes and the
// scrolling base, plus a single-player game built on them.
package flappy

import (
	"math"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// Bird is one flying agent. X is fixed for the whole run.
type Bird struct {
	X, Y float64
	Tilt float64 // Degrees, positive = nose up

	tick   int     // Ticks since the last jump (or spawn)
	vel    float64 // Velocity set by the last jump
	height float64 // Y at the last jump

	cfg  config.BirdConfig
	mask *sprite.Mask
}

// NewBird spawns a bird at the configured spawn point.
func NewBird(cfg config.BirdConfig, mask *sprite.Mask) *Bird {
	return &Bird{
		X:      cfg.SpawnX,
		Y:      cfg.SpawnY,
		height: cfg.SpawnY,
		cfg:    cfg,
		mask:   mask,
	}
}

// Jump gives the bird an upward impulse. Only the last call before the
// next Move has any effect.
func (b *Bird) Jump() {
	b.vel = b.cfg.JumpVelocity
	b.tick = 0
	b.height = b.Y
}

// Move advances the bird by one tick.
func (b *Bird) Move() {
	b.tick++
	t := float64(b.tick)

	d := b.vel*t + b.cfg.Gravity*t*t
	if d >= b.cfg.TerminalDisplacement {
		d = b.cfg.TerminalDisplacement
	}
	if d < 0 {
		d -= b.cfg.AscentBoost
	}
	b.Y += d

	if d < 0 || b.Y < b.height+b.cfg.TiltBuffer {
		if b.Tilt < b.cfg.MaxRotation {
			b.Tilt = b.cfg.MaxRotation
		}
	} else if b.Tilt > b.cfg.MinTilt {
		b.Tilt -= b.cfg.RotationVelocity
	}
}

// Ticks returns the number of ticks since the last jump.
func (b *Bird) Ticks() int { return b.tick }

// Mask returns the bird's collision mask.
func (b *Bird) Mask() *sprite.Mask { return b.mask }

// PixelY is the bird's row on the pixel grid, rounded half to even.
func (b *Bird) PixelY() int {
	return int(math.RoundToEven(b.Y))
}

// OutOfBounds reports whether the bird has left the playfield: above the
// top edge or with its lower edge below groundY.
func (b *Bird) OutOfBounds(groundY float64) bool {
	return b.Y+float64(b.cfg.Height) > groundY || b.Y < 0
}

// State returns a copy of the bird's visible state.
func (b *Bird) State() BirdState {
	return BirdState{X: b.X, Y: b.Y, Tilt: b.Tilt}
}
