package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

// FrameFeed hands frames from the training goroutine to the view. Frames
// are dropped rather than queued when the view falls behind.
type FrameFeed struct {
	ch      chan training.Frame
	dropped atomic.Int64
}

// NewFrameFeed creates a feed holding at most buffer undelivered frames.
func NewFrameFeed(buffer int) *FrameFeed {
	return &FrameFeed{ch: make(chan training.Frame, max(buffer, 1))}
}

// OnFrame implements training.Observer without ever blocking.
func (f *FrameFeed) OnFrame(fr training.Frame) {
	select {
	case f.ch <- fr:
	default:
		f.dropped.Add(1)
	}
}

// Dropped returns how many frames the view never saw.
func (f *FrameFeed) Dropped() int64 { return f.dropped.Load() }

// Close ends the feed. Only the producer may call it, after its last frame.
func (f *FrameFeed) Close() { close(f.ch) }

// frameMsg carries one frame into the Bubble Tea loop.
type frameMsg training.Frame

// TrainingDoneMsg is delivered once the trainer returns.
type TrainingDoneMsg struct {
	Summary *training.Summary
	Err     error
}

func waitForFrame(ch <-chan training.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return frameMsg(f)
	}
}

func waitForDone(ch <-chan TrainingDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

var (
	hudStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

// WatchModel shows a training run as it happens.
type WatchModel struct {
	feed     *FrameFeed
	pacer    *training.TickPacer
	cancel   context.CancelFunc
	done     <-chan TrainingDoneMsg
	renderer *flappy.Renderer
	screen   *core.Screen

	frame    training.Frame
	hasFrame bool
	result   *TrainingDoneMsg

	keys       WatchKeyMap
	help       help.Model
	width      int
	height     int
	quitting   bool
	backToMenu bool
}

// NewWatchModel creates a view over an already running trainer. cancel
// stops the trainer; done must receive exactly one message.
func NewWatchModel(world config.FlappyConfig, feed *FrameFeed, pacer *training.TickPacer, cancel context.CancelFunc, done <-chan TrainingDoneMsg, width, height int) WatchModel {
	m := WatchModel{
		feed:     feed,
		pacer:    pacer,
		cancel:   cancel,
		done:     done,
		renderer: flappy.NewRenderer(world),
		keys:     DefaultWatchKeyMap(),
		help:     help.New(),
		width:    width,
		height:   height,
	}
	m.screen = core.NewScreen(width, m.playfieldHeight())
	m.help.Width = width
	return m
}

// StartWatch launches tr in the background and returns a view of it.
// The trainer stops when ctx ends or the view is quit.
func StartWatch(ctx context.Context, tr *training.Trainer, world config.FlappyConfig, feed *FrameFeed, pacer *training.TickPacer, width, height int) WatchModel {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan TrainingDoneMsg, 1)
	go func() {
		summary, err := tr.Run(ctx)
		feed.Close()
		pacer.Stop()
		done <- TrainingDoneMsg{Summary: summary, Err: err}
	}()
	return NewWatchModel(world, feed, pacer, cancel, done, width, height)
}

func (m WatchModel) playfieldHeight() int {
	return max(m.height-2, 1) // status and help lines
}

// Init starts listening for frames and for the end of training.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(waitForFrame(m.feed.ch), waitForDone(m.done))
}

// Update handles messages for the watch view.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = training.Frame(msg)
		m.hasFrame = true
		return m, waitForFrame(m.feed.ch)

	case TrainingDoneMsg:
		m.result = &msg
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, m.playfieldHeight())
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "b" && m.result != nil:
		m.backToMenu = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.pacer.SetPaused(!m.pacer.Paused())

	case key.Matches(msg, m.keys.Fast):
		m.pacer.SetFast(!m.pacer.Fast())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// View renders the latest frame with its HUD.
func (m WatchModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	if m.hasFrame {
		m.renderer.Draw(m.screen, m.frame.World)
		m.screen.DrawTextColored(2, 0, fmt.Sprintf(" Gen: %d ", m.frame.Generation), core.ColorHUD)
		m.screen.DrawTextRight(0, 2, fmt.Sprintf(" Score: %d ", m.frame.Score), core.ColorHUD)
	} else {
		m.screen.Clear()
		m.screen.DrawTextColored(2, 0, " Waiting for the first generation... ", core.ColorDim)
	}
	if m.result != nil {
		drawCenteredMessage(m.screen, "TRAINING FINISHED", m.resultLine())
	}

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(hudStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m WatchModel) statusLine() string {
	var parts []string
	if m.hasFrame {
		parts = append(parts,
			fmt.Sprintf("tick %d", m.frame.Tick),
			fmt.Sprintf("alive %d", m.frame.Alive),
			fmt.Sprintf("best %.1f", m.frame.Best))
	}
	line := hudStyle.Render(strings.Join(parts, "  "))
	switch {
	case m.pacer.Paused():
		line += "  " + statusStyle.Render("PAUSED")
	case m.pacer.Fast():
		line += "  " + statusStyle.Render(">> FAST")
	}
	return line
}

func (m WatchModel) resultLine() string {
	r := m.result
	if r.Summary == nil {
		return fmt.Sprintf("error: %v", r.Err)
	}
	line := fmt.Sprintf("%s after %d generations, best fitness %.1f, best score %d",
		r.Summary.Run.Status, r.Summary.Run.Generations, r.Summary.Run.BestFitness, r.Summary.Run.BestScore)
	if r.Err != nil && r.Summary.Run.Status == training.StatusFailed {
		line = fmt.Sprintf("failed: %v", r.Err)
	}
	return line
}

// Result returns the outcome of training, or nil if still running.
func (m WatchModel) Result() *TrainingDoneMsg { return m.result }

// IsQuitting returns true if user requested to quit.
func (m WatchModel) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to menu.
func (m WatchModel) BackToMenu() bool { return m.backToMenu }

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := min(max(len(title), len(subtitle))+4, dst.Width())
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box)

	dst.DrawTextColored(box.X+max((boxW-len(title))/2, 0), box.Y+1, title, core.ColorHUD)
	dst.DrawText(box.X+max((boxW-len(subtitle))/2, 0), box.Y+3, subtitle)
}

// Watch trains with a live view in the terminal and returns once both
// the view and the trainer have stopped.
func Watch(ctx context.Context, tr *training.Trainer, world config.FlappyConfig, feed *FrameFeed, pacer *training.TickPacer, width, height int, opts ...tea.ProgramOption) (*training.Summary, error) {
	model := StartWatch(ctx, tr, world, feed, pacer, width, height)

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	final, err := p.Run()
	model.cancel()
	if err != nil {
		<-model.done
		return nil, err
	}

	if wm, ok := final.(WatchModel); ok && wm.result != nil {
		return wm.result.Summary, wm.result.Err
	}
	res := <-model.done
	return res.Summary, res.Err
}
