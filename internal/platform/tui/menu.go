package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-neat/internal/core"
)

// MenuChoice identifies a menu entry.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoiceWatch
	ChoicePlay
	ChoiceHistory
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Choice MenuChoice
	Title  string
	Hint   string
}

var menuItems = []MenuItem{
	{Choice: ChoiceWatch, Title: "Watch training", Hint: "a fresh NEAT population learns to fly"},
	{Choice: ChoicePlay, Title: "Play", Hint: "fly the bird yourself"},
	{Choice: ChoiceHistory, Title: "History", Hint: "past training runs"},
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  MenuChoice
	highScore int
	status    string
}

// NewMenuModel creates a new menu model. highScore is shown under the title
// when positive.
func NewMenuModel(cfg core.RuntimeConfig, highScore int) MenuModel {
	return MenuModel{
		items:     menuItems,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		highScore: highScore,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		m.selected = m.items[m.cursor].Choice
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("  F L A P P Y   N E A T  ", m.width))
	b.WriteString("\n\n")

	if m.highScore > 0 {
		b.WriteString(centerText(fmt.Sprintf("Best human score: %d", m.highScore), m.width))
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%-16s", cursor, item.Title), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	hint := m.items[m.cursor].Hint
	if m.status != "" {
		hint = m.status
	}
	b.WriteString(hudStyle.Render(centerText(hint, m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Select  |  Q: Quit", m.width))
	b.WriteString("\n")

	return b.String()
}

// WithStatus returns a copy of the menu showing msg in place of the hint.
func (m MenuModel) WithStatus(msg string) MenuModel {
	m.status = msg
	return m
}

// Selected returns the chosen entry, or ChoiceNone.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// RunMenu shows the menu and returns the chosen entry together with the
// possibly resized config. ChoiceNone means the user quit.
func RunMenu(cfg core.RuntimeConfig, highScore int, status string) (MenuChoice, core.RuntimeConfig, error) {
	p := tea.NewProgram(
		NewMenuModel(cfg, highScore).WithStatus(status),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return ChoiceNone, cfg, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok || m.IsQuitting() {
		return ChoiceNone, cfg, nil
	}
	return m.Selected(), m.Config(), nil
}
