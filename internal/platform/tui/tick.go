// Package tui provides the Bubble Tea front end: human play, the live
// training view, run history and the SSH server that hosts them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultTickRate = 30
	maxTickRate     = 240
)

// TickMsg advances the human-play simulation by one step.
type TickMsg time.Time

// frameInterval is the delay between simulation steps at rate ticks per
// second. A non-positive rate uses the default and larger rates are capped.
func frameInterval(rate int) time.Duration {
	switch {
	case rate <= 0:
		rate = defaultTickRate
	case rate > maxTickRate:
		rate = maxTickRate
	}
	return time.Second / time.Duration(rate)
}

func tickCmd(rate int) tea.Cmd {
	return tea.Tick(frameInterval(rate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
