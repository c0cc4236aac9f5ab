package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/flappy-neat/internal/core"
)

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(20, 3)
	s.DrawTextColored(2, 1, "Score: 7", core.ColorHUD)

	out := RenderScreen(s)

	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Fatalf("got %d lines, expected 3", len(lines))
	}
	if !strings.Contains(out, "Score: 7") {
		t.Errorf("rendered screen lost its text:\n%s", out)
	}
}

func TestRenderScreenDropsBlankTail(t *testing.T) {
	s := core.NewScreen(30, 2)
	s.DrawText(0, 0, "ab")

	lines := strings.Split(RenderScreen(s), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, expected 2", len(lines))
	}
	if lines[0] != "ab" {
		t.Errorf("row 0 = %q, expected %q", lines[0], "ab")
	}
	if lines[1] != "" {
		t.Errorf("row 1 = %q, expected empty", lines[1])
	}
}

func TestRenderScreenUnstyledColorIsPlain(t *testing.T) {
	s := core.NewScreen(5, 1)
	s.DrawTextColored(0, 0, "hi", core.ColorRed)

	if out := RenderScreen(s); out != "hi" {
		t.Errorf("RenderScreen() = %q, expected %q", out, "hi")
	}
}

func TestFrameInterval(t *testing.T) {
	tests := []struct {
		rate     int
		expected time.Duration
	}{
		{30, time.Second / 30},
		{60, time.Second / 60},
		{0, time.Second / defaultTickRate},
		{-5, time.Second / defaultTickRate},
		{10000, time.Second / maxTickRate},
	}
	for _, tt := range tests {
		if got := frameInterval(tt.rate); got != tt.expected {
			t.Errorf("frameInterval(%d) = %v, expected %v", tt.rate, got, tt.expected)
		}
	}
}
