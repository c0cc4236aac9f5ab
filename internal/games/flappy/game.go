package flappy

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// Game is a single keyboard-controlled bird on the same world the
// trainer uses.
type Game struct {
	cfg      config.FlappyConfig
	masks    *sprite.Set
	renderer *Renderer

	bird  *Bird
	pipes *PipeField
	base  *Base

	score     int
	gameOver  bool
	paused    bool
	tickCount int
}

// New creates a new Flappy Bird game instance.
func New(cfg config.FlappyConfig, masks *sprite.Set) *Game {
	return &Game{
		cfg:      cfg,
		masks:    masks,
		renderer: NewRenderer(cfg),
	}
}

// ID returns the identifier scores are stored under.
func (g *Game) ID() string {
	return "flappy"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Flappy Bird"
}

// Reset initializes or restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig) {
	seed := rc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g.bird = NewBird(g.cfg.Bird, g.masks.Bird)
	g.pipes = NewPipeField(rand.New(rand.NewSource(seed)), g.cfg.Pipe, g.masks)
	g.base = NewBase(g.cfg.Base)
	g.score = 0
	g.gameOver = false
	g.paused = false
	g.tickCount = 0
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.gameOver {
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}

	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.tickCount++

	if in.Has(core.ActionFlap) {
		g.bird.Jump()
	}
	g.bird.Move()

	for _, p := range g.pipes.Pipes() {
		if p.Collide(g.bird) {
			g.gameOver = true
			break
		}
	}

	g.score += g.pipes.Advance(func(p *Pipe) bool {
		return !g.gameOver && p.X < g.bird.X
	})

	if g.bird.OutOfBounds(g.base.Y) {
		g.gameOver = true
	}

	g.base.Move()

	return core.StepResult{State: g.State()}
}

// Snapshot returns the current world for rendering.
func (g *Game) Snapshot() WorldSnapshot {
	return WorldSnapshot{
		Birds: []BirdState{g.bird.State()},
		Pipes: g.pipes.States(),
		Base:  g.base.State(),
	}
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	g.renderer.Draw(dst, g.Snapshot())

	scoreText := fmt.Sprintf(" Score: %d ", g.score)
	dst.DrawTextColored(2, 0, scoreText, core.ColorHUD)

	if g.paused {
		drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}

	if g.gameOver {
		drawCenteredMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  Press R to restart", g.score))
	}
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box)

	dst.DrawTextColored(box.X+(boxW-len(title))/2, box.Y+1, title, core.ColorHUD)
	dst.DrawText(box.X+(boxW-len(subtitle))/2, box.Y+3, subtitle)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Ticks returns the number of simulated ticks since the last reset.
func (g *Game) Ticks() int {
	return g.tickCount
}
