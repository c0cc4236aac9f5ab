package flappy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

func testWorld(t *testing.T) (config.FlappyConfig, *sprite.Set) {
	t.Helper()
	cfg := config.DefaultFlappyConfig()
	masks, err := sprite.NewSet(cfg)
	if err != nil {
		t.Fatalf("sprite.NewSet() failed: %v", err)
	}
	return cfg, masks
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBirdFirstTick(t *testing.T) {
	cfg, masks := testWorld(t)
	b := NewBird(cfg.Bird, masks.Bird)

	b.Move()

	if !almostEqual(b.Y, 351.5) {
		t.Errorf("Y after one tick = %v, expected 351.5", b.Y)
	}
	// Still within the buffer below the reference height: nose up.
	if b.Tilt != cfg.Bird.MaxRotation {
		t.Errorf("Tilt after one tick = %v, expected %v", b.Tilt, cfg.Bird.MaxRotation)
	}
}

func TestBirdFreeFallClosedForm(t *testing.T) {
	cfg, masks := testWorld(t)
	b := NewBird(cfg.Bird, masks.Bird)

	y := cfg.Bird.SpawnY
	for n := 1; n <= 10; n++ {
		b.Move()
		d := math.Min(1.5*float64(n*n), 16)
		y += d
		if !almostEqual(b.Y, y) {
			t.Fatalf("tick %d: Y = %v, expected %v", n, b.Y, y)
		}
	}
}

func TestBirdJump(t *testing.T) {
	cfg, masks := testWorld(t)
	b := NewBird(cfg.Bird, masks.Bird)
	b.Move()
	b.Move()

	b.Jump()
	if b.Ticks() != 0 {
		t.Errorf("Ticks() after jump = %d, expected 0", b.Ticks())
	}

	before := b.Y
	b.Move()
	// d = -10.5 + 1.5 = -9, plus the ascent boost of 2.
	if !almostEqual(b.Y, before-11) {
		t.Errorf("Y after jump tick = %v, expected %v", b.Y, before-11)
	}
	if b.Tilt != cfg.Bird.MaxRotation {
		t.Errorf("Tilt while climbing = %v, expected %v", b.Tilt, cfg.Bird.MaxRotation)
	}
}

func TestBirdJumpLastCallWins(t *testing.T) {
	cfg, masks := testWorld(t)
	a := NewBird(cfg.Bird, masks.Bird)
	b := NewBird(cfg.Bird, masks.Bird)

	a.Jump()
	a.Jump()
	a.Move()
	b.Jump()
	b.Move()

	if a.Y != b.Y || a.Tilt != b.Tilt {
		t.Errorf("double jump = (%v, %v), single jump = (%v, %v)", a.Y, a.Tilt, b.Y, b.Tilt)
	}
}

func TestBirdTiltRotatesDown(t *testing.T) {
	cfg, masks := testWorld(t)
	b := NewBird(cfg.Bird, masks.Bird)

	for range 30 {
		b.Move()
	}
	// Rotation stops once the tilt is no longer above the minimum.
	if b.Tilt > cfg.Bird.MinTilt {
		t.Errorf("Tilt after long fall = %v, expected <= %v", b.Tilt, cfg.Bird.MinTilt)
	}
	if b.Tilt < cfg.Bird.MinTilt-cfg.Bird.RotationVelocity {
		t.Errorf("Tilt after long fall = %v, overshot the minimum", b.Tilt)
	}

	last := b.Tilt
	b.Move()
	if b.Tilt != last {
		t.Errorf("Tilt kept rotating: %v -> %v", last, b.Tilt)
	}
}

func TestBirdDeterminism(t *testing.T) {
	cfg, masks := testWorld(t)
	a := NewBird(cfg.Bird, masks.Bird)
	b := NewBird(cfg.Bird, masks.Bird)

	for i := range 40 {
		if i%7 == 0 {
			a.Jump()
			b.Jump()
		}
		a.Move()
		b.Move()
		if a.State() != b.State() {
			t.Fatalf("tick %d: states diverged: %+v vs %+v", i, a.State(), b.State())
		}
	}
}

func TestBirdOutOfBounds(t *testing.T) {
	cfg, masks := testWorld(t)
	b := NewBird(cfg.Bird, masks.Bird)

	tests := []struct {
		y        float64
		expected bool
	}{
		{350, false},
		{0, false},
		{-0.5, true},
		{682, false}, // 682 + 48 = 730, exactly on the ground
		{682.5, true},
	}
	for _, tc := range tests {
		b.Y = tc.y
		if got := b.OutOfBounds(cfg.Base.Y); got != tc.expected {
			t.Errorf("OutOfBounds() at y=%v = %v, expected %v", tc.y, got, tc.expected)
		}
	}
}

func TestNewPipeHeightRange(t *testing.T) {
	cfg, masks := testWorld(t)
	rng := rand.New(rand.NewSource(1))

	for range 1000 {
		p := NewPipe(cfg.Pipe.SpawnX, rng, cfg.Pipe, masks)
		if p.Height < 50 || p.Height >= 450 {
			t.Fatalf("Height = %v, expected in [50, 450)", p.Height)
		}
		if p.Top != p.Height-640 {
			t.Errorf("Top = %v, expected %v", p.Top, p.Height-640)
		}
		if p.Bottom != p.Height+200 {
			t.Errorf("Bottom = %v, expected %v", p.Bottom, p.Height+200)
		}
		if p.X != 700 {
			t.Errorf("X = %v, expected 700", p.X)
		}
	}
}

func TestPipeMoveAndOffScreen(t *testing.T) {
	cfg, masks := testWorld(t)
	p := NewPipeAt(-103, 200, cfg.Pipe, masks)

	if p.OffScreen() {
		t.Error("pipe with trailing edge at x=1 should still be on screen")
	}
	p.Move()
	if p.X != -104 {
		t.Errorf("X after Move() = %v, expected -104", p.X)
	}
	if p.OffScreen() {
		t.Error("pipe with trailing edge at x=0 should still be on screen")
	}
	p.Move()
	if !p.OffScreen() {
		t.Error("pipe with trailing edge past x=0 should be off screen")
	}
}

func TestPipeCollide(t *testing.T) {
	cfg, masks := testWorld(t)
	p := NewPipeAt(230, 300, cfg.Pipe, masks)

	tests := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{"centered in gap", 230, 376, false},
		{"head in top pipe", 230, 280, true},
		{"belly in bottom pipe", 230, 470, true},
		{"far left of pipe", 0, 100, false},
		{"far right of pipe", 400, 100, false},
		{"just below top pipe", 230, 300, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBird(cfg.Bird, masks.Bird)
			b.X, b.Y = tc.x, tc.y
			if got := p.Collide(b); got != tc.expected {
				t.Errorf("Collide() at (%v, %v) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestPipeCollideRoundsHalfToEven(t *testing.T) {
	cfg, masks := testWorld(t)
	p := NewPipeAt(230, 300, cfg.Pipe, masks)
	b := NewBird(cfg.Bird, masks.Bird)

	// 299.5 rounds to 300: the head row sits just below the top pipe.
	b.Y = 299.5
	if p.Collide(b) {
		t.Error("Collide() at y=299.5 should round to 300 and miss")
	}
	// 298.5 rounds to 298: the head row is inside the top pipe's cap.
	b.Y = 298.5
	if !p.Collide(b) {
		t.Error("Collide() at y=298.5 should round to 298 and hit")
	}
}

func TestBaseWrap(t *testing.T) {
	cfg, _ := testWorld(t)
	base := NewBase(cfg.Base)

	ticks := int(cfg.Base.Width / cfg.Base.Velocity)
	for range ticks {
		base.Move()
		if !almostEqual(math.Abs(base.X2-base.X1), cfg.Base.Width) {
			t.Fatalf("segments drifted apart: X1=%v X2=%v", base.X1, base.X2)
		}
	}
	if base.X2 != 0 {
		t.Errorf("after %d ticks X2 = %v, expected 0", ticks, base.X2)
	}

	base.Move()
	if base.X1 != cfg.Base.Width-1 {
		t.Errorf("X1 after wrap = %v, expected %v", base.X1, cfg.Base.Width-1)
	}
	if !almostEqual(base.X1-base.X2, cfg.Base.Width) {
		t.Errorf("segment separation after wrap = %v, expected %v", base.X1-base.X2, cfg.Base.Width)
	}
}

func TestPipeFieldLookahead(t *testing.T) {
	cfg, masks := testWorld(t)
	pf := NewPipeField(rand.New(rand.NewSource(1)), cfg.Pipe, masks)

	first := pf.NewPipeAt(100, 200)
	second := pf.NewPipeAt(400, 200)
	pf.Reset(first, second)

	if got := pf.Lookahead(204); got != first {
		t.Error("Lookahead() on the trailing edge should still return the first pipe")
	}
	if got := pf.Lookahead(205); got != second {
		t.Error("Lookahead() past the trailing edge should return the second pipe")
	}

	pf.Reset(first)
	if got := pf.Lookahead(1000); got != first {
		t.Error("Lookahead() with one pipe should return it")
	}
}

func TestPipeFieldAdvancePassesOnce(t *testing.T) {
	cfg, masks := testWorld(t)
	pf := NewPipeField(rand.New(rand.NewSource(1)), cfg.Pipe, masks)
	pf.Reset(pf.NewPipeAt(229, 200))

	birdX := 230.0
	behind := func(p *Pipe) bool { return p.X < birdX }

	if got := pf.Advance(behind); got != 1 {
		t.Fatalf("first Advance() passed %d, expected 1", got)
	}
	if pf.Len() != 2 {
		t.Fatalf("Len() after pass = %d, expected 2", pf.Len())
	}
	if spawned := pf.Pipes()[1]; spawned.X != cfg.Pipe.SpawnX-cfg.Pipe.Velocity && spawned.X != cfg.Pipe.SpawnX {
		t.Errorf("spawned pipe X = %v, expected near %v", spawned.X, cfg.Pipe.SpawnX)
	}

	for range 5 {
		if got := pf.Advance(behind); got != 0 {
			t.Fatalf("Advance() passed the same pipe again")
		}
	}
}

func TestPipeFieldRemovesOffScreen(t *testing.T) {
	cfg, masks := testWorld(t)
	pf := NewPipeField(rand.New(rand.NewSource(1)), cfg.Pipe, masks)
	gone := pf.NewPipeAt(-105, 200)
	gone.Passed = true
	stays := pf.NewPipeAt(300, 200)
	pf.Reset(gone, stays)

	pf.Advance(func(*Pipe) bool { return false })

	if pf.Len() != 1 || pf.Pipes()[0] != stays {
		t.Errorf("after Advance() pipes = %v, expected only the on-screen pipe", pf.States())
	}
	if stays.X != 299 {
		t.Errorf("remaining pipe X = %v, expected 299", stays.X)
	}
}
