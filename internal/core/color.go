package core

// Color represents a foreground color for a screen cell.
// The platform layer maps each value to an ANSI 256-color code.
type Color uint8

// Base palette.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorCyan
	ColorWhite
	ColorBrightGreen
	ColorBrightYellow
	ColorOrange
	ColorGray
)

// Playfield roles. Renderers draw with these so the palette can change in one place.
const (
	ColorBird     = ColorBrightYellow
	ColorBirdBeak = ColorOrange
	ColorPipe     = ColorGreen
	ColorPipeCap  = ColorBrightGreen
	ColorGround   = ColorYellow
	ColorHUD      = ColorWhite
	ColorDim      = ColorGray
)
