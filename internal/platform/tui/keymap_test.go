package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-neat/internal/core"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{"space flaps", tea.KeyMsg{Type: tea.KeySpace}, core.ActionFlap, false},
		{"up flaps", tea.KeyMsg{Type: tea.KeyUp}, core.ActionFlap, false},
		{"w flaps", runeKey("w"), core.ActionFlap, false},
		{"p pauses", runeKey("p"), core.ActionPause, false},
		{"esc pauses", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionPause, false},
		{"r restarts", runeKey("r"), core.ActionRestart, false},
		{"q quits", runeKey("q"), core.ActionQuit, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"x ignored", runeKey("x"), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			if action != tt.action || quit != tt.quit {
				t.Errorf("MapKey(%q) = %v, %v; expected %v, %v", tt.msg.String(), action, quit, tt.action, tt.quit)
			}
		})
	}
}

func TestMapKeyToFrameSkipsQuit(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(tea.KeyMsg{Type: tea.KeySpace}, &frame) {
		t.Error("space reported as quit")
	}
	if !frame.Has(core.ActionFlap) {
		t.Error("space did not set ActionFlap")
	}
	if !km.MapKeyToFrame(runeKey("q"), &frame) {
		t.Error("q not reported as quit")
	}
	if frame.Has(core.ActionQuit) {
		t.Error("quit should not be stored in the frame")
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()
	tests := map[string]struct {
		msg      tea.KeyMsg
		expected MenuAction
	}{
		"k":     {runeKey("k"), MenuActionUp},
		"down":  {tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		"enter": {tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		"b":     {runeKey("b"), MenuActionBack},
		"q":     {runeKey("q"), MenuActionQuit},
		"z":     {runeKey("z"), MenuActionNone},
	}

	for name, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.expected {
			t.Errorf("MapKeyToMenuAction(%s) = %v, expected %v", name, got, tt.expected)
		}
	}
}

func TestMenuSelect(t *testing.T) {
	m := NewMenuModel(core.RuntimeConfig{ScreenW: 80, ScreenH: 24}, 0)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(MenuModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(MenuModel)

	if m.Selected() != ChoicePlay {
		t.Errorf("Selected() = %v, expected ChoicePlay", m.Selected())
	}
	if cmd == nil {
		t.Error("selecting an entry should quit the menu program")
	}
}

func TestMenuCursorStaysInRange(t *testing.T) {
	m := NewMenuModel(core.RuntimeConfig{ScreenW: 80, ScreenH: 24}, 0)
	for range 10 {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(MenuModel)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(MenuModel).Selected(); got != ChoiceHistory {
		t.Errorf("Selected() = %v, expected the last entry", got)
	}
}
