package flappy

import (
	"math"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
)

// Visual characters for rendering
const (
	BirdChar      = '█'
	BeakChar      = '▶'
	PipeChar      = '█'
	PipeCapTop    = '▄'
	PipeCapBottom = '▀'
	GroundChar    = '═'
	SoilChars     = "░▒"
)

// Renderer draws world snapshots onto a character screen, scaling the
// reference window to whatever size the screen has.
type Renderer struct {
	cfg config.FlappyConfig
}

// NewRenderer creates a renderer for the given world configuration.
func NewRenderer(cfg config.FlappyConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Viewport returns the world-to-screen projection for dst.
func (r *Renderer) Viewport(dst *core.Screen) core.Viewport {
	return core.Viewport{
		WorldW:  float64(r.cfg.Window.Width),
		WorldH:  float64(r.cfg.Window.Height),
		ScreenW: dst.Width(),
		ScreenH: dst.Height(),
	}
}

// Draw clears dst and renders the snapshot. HUD text is left to callers.
func (r *Renderer) Draw(dst *core.Screen, snap WorldSnapshot) {
	dst.Clear()
	v := r.Viewport(dst)

	for _, p := range snap.Pipes {
		r.drawPipe(dst, v, p, snap.Base.Y)
	}
	r.drawBase(dst, v, snap.Base)
	for _, b := range snap.Birds {
		r.drawBird(dst, v, b)
	}
}

func (r *Renderer) drawPipe(dst *core.Screen, v core.Viewport, p PipeState, groundY float64) {
	w := float64(r.cfg.Pipe.Width)

	top := v.Rect(p.X, 0, w, p.Height)
	dst.FillRect(top, PipeChar, core.ColorPipe)
	dst.DrawHLine(top.X, top.Bottom()-1, top.W, PipeCapTop, core.ColorPipeCap)

	if p.Bottom < groundY {
		bottom := v.Rect(p.X, p.Bottom, w, groundY-p.Bottom)
		dst.FillRect(bottom, PipeChar, core.ColorPipe)
		dst.DrawHLine(bottom.X, bottom.Y, bottom.W, PipeCapBottom, core.ColorPipeCap)
	}
}

func (r *Renderer) drawBase(dst *core.Screen, v core.Viewport, b BaseState) {
	y := v.Y(b.Y)
	dst.DrawHLine(0, y, dst.Width(), GroundChar, core.ColorGround)

	// Soil stripes are anchored to the first segment so they scroll with it.
	soil := []rune(SoilChars)
	stripe := max(float64(r.cfg.Window.Width)/float64(max(dst.Width(), 1))*2, 1)
	for row := y + 1; row < dst.Height(); row++ {
		for col := 0; col < dst.Width(); col++ {
			wx := float64(col)*float64(r.cfg.Window.Width)/float64(max(dst.Width(), 1)) - b.X1
			i := int(math.Floor(wx/stripe)) & 1
			dst.SetColored(col, row, soil[i], core.ColorGround)
		}
	}
}

func (r *Renderer) drawBird(dst *core.Screen, v core.Viewport, b BirdState) {
	rect := v.Rect(b.X, b.Y, float64(r.cfg.Bird.Width), float64(r.cfg.Bird.Height))
	dst.FillRect(rect, BirdChar, core.ColorBird)

	// Beak sits on the top row while climbing and the bottom row while diving.
	beakY := rect.Y
	if b.Tilt < 0 {
		beakY = rect.Bottom() - 1
	}
	dst.SetColored(rect.Right(), beakY, BeakChar, core.ColorBirdBeak)
}
