package flappy

import "github.com/vovakirdan/flappy-neat/internal/config"

// Base is the scrolling ground, drawn as two segments laid end to end.
type Base struct {
	Y      float64
	X1, X2 float64

	cfg config.BaseConfig
}

// NewBase creates a base with the first segment at x=0.
func NewBase(cfg config.BaseConfig) *Base {
	return &Base{
		Y:   cfg.Y,
		X1:  0,
		X2:  cfg.Width,
		cfg: cfg,
	}
}

// Move scrolls both segments and wraps any segment that left the screen
// to just behind the other one.
func (b *Base) Move() {
	b.X1 -= b.cfg.Velocity
	b.X2 -= b.cfg.Velocity

	if b.X1+b.cfg.Width < 0 {
		b.X1 = b.X2 + b.cfg.Width
	}
	if b.X2+b.cfg.Width < 0 {
		b.X2 = b.X1 + b.cfg.Width
	}
}

// State returns a copy of the base's visible state.
func (b *Base) State() BaseState {
	return BaseState{Y: b.Y, X1: b.X1, X2: b.X2}
}
