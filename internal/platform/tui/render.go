package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-neat/internal/core"
)

// palette styles each playfield role. Colors without a role render plain.
var palette = map[core.Color]lipgloss.Style{
	core.ColorBird:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
	core.ColorBirdBeak: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	core.ColorPipe:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	core.ColorPipeCap:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	core.ColorGround:   lipgloss.NewStyle().Foreground(lipgloss.Color("136")),
	core.ColorHUD:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")),
	core.ColorDim:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen turns a screen buffer into styled terminal text. Cells of
// one color are written as a single styled span, and the blank tail of each
// row is dropped since most of the sky is empty.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height() + s.Height())

	var span strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}

		end := rowEnd(s, y)
		for x := 0; x < end; {
			color := s.GetCell(x, y).Color
			span.Reset()
			for ; x < end && s.GetCell(x, y).Color == color; x++ {
				span.WriteRune(s.GetCell(x, y).Rune)
			}

			if style, ok := palette[color]; ok {
				sb.WriteString(style.Render(span.String()))
			} else {
				sb.WriteString(span.String())
			}
		}
	}
	return sb.String()
}

// rowEnd returns one past the last non-blank cell of row y.
func rowEnd(s *core.Screen, y int) int {
	end := s.Width()
	for end > 0 {
		if c := s.GetCell(end-1, y); c.Rune != ' ' && c.Rune != 0 {
			break
		}
		end--
	}
	return end
}
