package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/neat"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
	"github.com/vovakirdan/flappy-neat/internal/storage"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.flappyneat/host_key.
	HostKeyPath string

	// DBPath is the path to the database. Training runs and scores of
	// every session land here.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// World is the game configuration shared by all sessions.
	World config.FlappyConfig

	// NEATSource is the raw NEAT configuration. Each session parses its
	// own copy so populations never share state.
	NEATSource []byte

	// Generations caps each session's training run. 0 means no cap.
	Generations int

	// FPS paces the watched simulation.
	FPS int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.flappyneat/flappyneat.db",
		IdleTimeout: 30 * time.Minute,
		World:       config.DefaultFlappyConfig(),
		NEATSource:  config.GetDefault("neat"),
		Generations: 50,
		FPS:         30,
	}
}

// SSHServer serves the menu, training view and game to SSH clients.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	masks  *sprite.Set
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "flappyneat-ssh",
		})
	}

	// Fail early on a broken NEAT file instead of in every session.
	if _, err := neat.ParseConfig(cfg.NEATSource); err != nil {
		return nil, err
	}
	masks, err := sprite.NewSet(cfg.World)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		masks:  masks,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".flappyneat", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.FPS,
		Seed:     time.Now().UnixNano(),
	}

	model := NewSessionModel(sshSession.Context(), s, cfg, sshSession.User())
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// newTrainer builds an isolated trainer for one session.
func (s *SSHServer) newTrainer(username string, feed *FrameFeed, pacer *training.TickPacer) (*training.Trainer, error) {
	neatCfg, err := neat.ParseConfig(s.config.NEATSource)
	if err != nil {
		return nil, err
	}

	var rec training.Recorder
	if s.store != nil {
		rec = s.store
	}

	return training.NewTrainer(s.config.World, neatCfg, training.Options{
		Seed:        time.Now().UnixNano(),
		Generations: s.config.Generations,
		Observer:    feed,
		Pacer:       pacer,
		Recorder:    rec,
		Logger:      s.logger.With("user", username),
	})
}

func (s *SSHServer) scoreSaver() ScoreSaver {
	if s.store == nil {
		return nil
	}
	return s.store
}

func (s *SSHServer) historySource() HistorySource {
	if s.store == nil {
		return nil
	}
	return s.store
}

func (s *SSHServer) highScore() int {
	if s.store == nil {
		return 0
	}
	high, err := s.store.HighScore("flappy")
	if err != nil {
		s.logger.Warn("could not read high score", "error", err)
	}
	return high
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewWatch
	viewPlay
	viewHistory
)

// SessionModel manages one SSH session: menu, then training, play or
// history, then back to the menu.
type SessionModel struct {
	ctx      context.Context
	srv      *SSHServer
	config   core.RuntimeConfig
	username string

	view    sessionView
	menu    MenuModel
	watch   WatchModel
	play    PlayModel
	history HistoryModel

	quitting bool
}

// NewSessionModel creates a new session model. Training started from the
// session stops when ctx ends.
func NewSessionModel(ctx context.Context, srv *SSHServer, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		ctx:      ctx,
		srv:      srv,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(cfg, srv.highScore()),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active view.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.view {
	case viewWatch:
		return m.updateWatch(msg)
	case viewPlay:
		return m.updatePlay(msg)
	case viewHistory:
		return m.updateHistory(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.menu.Selected() {
	case ChoiceWatch:
		feed := NewFrameFeed(1)
		pacer := training.NewTickPacer(m.config.TickRate)
		tr, err := m.srv.newTrainer(m.username, feed, pacer)
		if err != nil {
			pacer.Stop()
			m.srv.logger.Error("cannot start training", "user", m.username, "error", err)
			return m.backToMenu(fmt.Sprintf("cannot start training: %v", err))
		}
		m.watch = StartWatch(m.ctx, tr, m.srv.config.World, feed, pacer, m.config.ScreenW, m.config.ScreenH)
		m.view = viewWatch
		return m, m.watch.Init()

	case ChoicePlay:
		game := flappy.New(m.srv.config.World, m.srv.masks)
		m.play = NewPlayModel(game, m.srv.scoreSaver(), m.config)
		m.view = viewPlay
		return m, m.play.Init()

	case ChoiceHistory:
		m.history = NewHistoryModel(m.srv.historySource(), m.config.ScreenW, m.config.ScreenH)
		m.view = viewHistory
		return m, m.history.Init()
	}

	return m, cmd
}

func (m SessionModel) updateWatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.watch.Update(msg)
	if wm, ok := newModel.(WatchModel); ok {
		m.watch = wm
	}

	if m.watch.BackToMenu() {
		return m.backToMenu("")
	}
	if m.watch.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.play.Update(msg)
	if pm, ok := newModel.(PlayModel); ok {
		m.play = pm
	}

	if m.play.BackToMenu() {
		return m.backToMenu("")
	}
	if m.play.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if hm, ok := newModel.(HistoryModel); ok {
		m.history = hm
	}

	if m.history.IsGoingBack() {
		return m.backToMenu("")
	}
	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// backToMenu drops the current view. Any tea.Quit it returned is discarded.
func (m SessionModel) backToMenu(status string) (tea.Model, tea.Cmd) {
	m.view = viewMenu
	m.menu = NewMenuModel(m.config, m.srv.highScore()).WithStatus(status)
	return m, m.menu.Init()
}

// View renders the active view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewWatch:
		return m.watch.View()
	case viewPlay:
		return m.play.View()
	case viewHistory:
		return m.history.View()
	default:
		return m.menu.View()
	}
}
