package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-neat/internal/storage"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

// History layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show run list sidebar
	sidebarWidth       = 24 // Width of run list sidebar
	maxRuns            = 50 // Max runs to load
)

// HistorySource lists stored training runs.
type HistorySource interface {
	Runs(limit int) ([]training.RunInfo, error)
	Generations(runID string) ([]training.GenerationStats, error)
}

var _ HistorySource = (*storage.Store)(nil)

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextRun key.Binding
	PrevRun key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextRun, k.PrevRun, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextRun, k.PrevRun},
		{k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextRun: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next run"),
		),
		PrevRun: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev run"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel browses stored training runs and their generations.
type HistoryModel struct {
	source      HistorySource
	runs        []training.RunInfo
	runCursor   int
	gens        []training.GenerationStats
	err         error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewHistoryModel creates a history screen. source may be nil.
func NewHistoryModel(source HistorySource, width, height int) HistoryModel {
	m := HistoryModel{
		source:      source,
		keys:        DefaultHistoryKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()

	if source != nil {
		m.runs, m.err = source.Runs(maxRuns)
	}
	if len(m.runs) > 0 {
		m.loadGenerations()
	}
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Species", Width: 8},
		{Title: "Best", Width: 9},
		{Title: "Mean", Width: 9},
		{Title: "Stdev", Width: 8},
		{Title: "Score", Width: 6},
		{Title: "Ticks", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, summary and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *HistoryModel) loadGenerations() {
	m.gens = nil
	if m.source != nil && len(m.runs) > 0 {
		m.gens, m.err = m.source.Generations(m.runs[m.runCursor].ID)
	}
	m.updateTableRows()
}

func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.gens))
	for i, g := range m.gens {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%d", g.Species),
			fmt.Sprintf("%.2f", g.BestFitness),
			fmt.Sprintf("%.2f", g.MeanFitness),
			fmt.Sprintf("%.2f", g.StdFitness),
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%d", g.Ticks),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextRun):
			if len(m.runs) > 0 {
				m.runCursor = (m.runCursor + 1) % len(m.runs)
				m.loadGenerations()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevRun):
			if len(m.runs) > 0 {
				m.runCursor = (m.runCursor - 1 + len(m.runs)) % len(m.runs)
				m.loadGenerations()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "TRAINING HISTORY"
	if run, ok := m.SelectedRun(); ok {
		title = fmt.Sprintf("TRAINING HISTORY - %s", shortID(run.ID))
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", m.renderRun()))
	} else {
		b.WriteString(m.renderRun())
	}

	b.WriteString("\n")
	b.WriteString(hudStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m HistoryModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Runs\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, r := range m.runs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.runCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(fmt.Sprintf("%s%s %s", cursor, shortID(r.ID), r.StartedAt.Local().Format("Jan 02"))))
		sidebar.WriteString("\n")
	}

	return sidebarStyle.Render(sidebar.String())
}

func (m HistoryModel) renderRun() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	run, ok := m.SelectedRun()
	if !ok {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		msg := "No training runs recorded yet.\nRun `flappyneat train` to start one!"
		if m.err != nil {
			msg = fmt.Sprintf("Could not load runs: %v", m.err)
		}
		return boxStyle.Render(emptyStyle.Render(msg))
	}

	summary := fmt.Sprintf("%s  seed %d  pop %d  gens %d  best %.2f  score %d",
		run.Status, run.Seed, run.PopSize, run.Generations, run.BestFitness, run.BestScore)
	if len(m.gens) == 0 {
		return boxStyle.Render(summary + "\n\n" + hudStyle.Render("No generations recorded."))
	}
	return boxStyle.Render(summary + "\n\n" + m.table.View())
}

// SelectedRun returns the run under the cursor.
func (m HistoryModel) SelectedRun() (training.RunInfo, bool) {
	if len(m.runs) == 0 {
		return training.RunInfo{}, false
	}
	return m.runs[m.runCursor], true
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(source HistorySource, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewHistoryModel(source, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
