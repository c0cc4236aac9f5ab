package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

type watchFixture struct {
	model     WatchModel
	feed      *FrameFeed
	pacer     *training.TickPacer
	done      chan TrainingDoneMsg
	cancelled *bool
}

func newWatchFixture(t *testing.T) watchFixture {
	t.Helper()
	feed := NewFrameFeed(1)
	pacer := training.NewTickPacer(30)
	t.Cleanup(pacer.Stop)
	done := make(chan TrainingDoneMsg, 1)
	cancelled := new(bool)

	m := NewWatchModel(config.DefaultFlappyConfig(), feed, pacer, func() { *cancelled = true }, done, 60, 30)
	return watchFixture{model: m, feed: feed, pacer: pacer, done: done, cancelled: cancelled}
}

func update(t *testing.T, m WatchModel, msg tea.Msg) (WatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(WatchModel)
	if !ok {
		t.Fatalf("Update() returned %T, expected WatchModel", next)
	}
	return wm, cmd
}

func TestFrameFeedDropsWhenFull(t *testing.T) {
	feed := NewFrameFeed(1)
	feed.OnFrame(training.Frame{Tick: 1})
	feed.OnFrame(training.Frame{Tick: 2})

	if feed.Dropped() != 1 {
		t.Errorf("Dropped() = %d, expected 1", feed.Dropped())
	}
	if got := <-feed.ch; got.Tick != 1 {
		t.Errorf("delivered tick %d, expected the first frame", got.Tick)
	}

	feed.Close()
	if msg := waitForFrame(feed.ch)(); msg != nil {
		t.Errorf("closed feed produced %v, expected nil", msg)
	}
}

func TestWatchShowsFrame(t *testing.T) {
	fx := newWatchFixture(t)

	frame := training.Frame{
		Generation: 3,
		Tick:       42,
		Score:      2,
		Alive:      5,
		Best:       6.5,
		World: flappy.WorldSnapshot{
			Birds: []flappy.BirdState{{X: 230, Y: 350}},
			Pipes: []flappy.PipeState{{X: 400, Height: 300, Bottom: 500}},
			Base:  flappy.BaseState{Y: 730, X2: 672},
		},
	}
	m, cmd := update(t, fx.model, frameMsg(frame))
	if cmd == nil {
		t.Error("a frame should re-arm the feed listener")
	}

	view := m.View()
	for _, want := range []string{"Gen: 3", "Score: 2", "alive 5", "best 6.5"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}

func TestWatchKeysDrivePacer(t *testing.T) {
	fx := newWatchFixture(t)
	m := fx.model

	m, _ = update(t, m, runeKey("p"))
	if !fx.pacer.Paused() {
		t.Error("p did not pause the simulation")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view does not show the pause state")
	}
	m, _ = update(t, m, runeKey("p"))
	if fx.pacer.Paused() {
		t.Error("second p did not resume the simulation")
	}

	m, _ = update(t, m, runeKey("f"))
	if !fx.pacer.Fast() {
		t.Error("f did not enable fast mode")
	}

	m, cmd := update(t, m, runeKey("q"))
	if !*fx.cancelled {
		t.Error("q did not cancel training")
	}
	if !m.IsQuitting() || cmd == nil {
		t.Error("q did not quit the view")
	}
}

func TestWatchBackOnlyAfterTraining(t *testing.T) {
	fx := newWatchFixture(t)

	m, _ := update(t, fx.model, runeKey("b"))
	if m.BackToMenu() {
		t.Error("b left the view while training was running")
	}

	summary := &training.Summary{Run: training.RunInfo{Status: training.StatusCompleted, Generations: 4, BestScore: 1}}
	m, _ = update(t, m, TrainingDoneMsg{Summary: summary})
	if m.Result() == nil {
		t.Fatal("Result() is nil after TrainingDoneMsg")
	}
	if !strings.Contains(m.View(), "TRAINING FINISHED") {
		t.Error("view does not announce the end of training")
	}

	m, _ = update(t, m, runeKey("b"))
	if !m.BackToMenu() {
		t.Error("b did not go back after training finished")
	}
	if *fx.cancelled {
		t.Error("going back should not cancel a finished run")
	}
}

func TestWatchResultLineOnFailure(t *testing.T) {
	fx := newWatchFixture(t)
	boom := errors.New("disk full")
	summary := &training.Summary{Run: training.RunInfo{Status: training.StatusFailed}}

	m, _ := update(t, fx.model, TrainingDoneMsg{Summary: summary, Err: boom})
	if got := m.resultLine(); !strings.Contains(got, "disk full") {
		t.Errorf("resultLine() = %q, expected the error", got)
	}

	m, _ = update(t, fx.model, TrainingDoneMsg{Err: boom})
	if got := m.resultLine(); got != "error: disk full" {
		t.Errorf("resultLine() = %q, expected %q", got, "error: disk full")
	}
}
