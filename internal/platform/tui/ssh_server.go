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

	"github.com/vovakirdan/luaframe/internal/game"
	"github.com/vovakirdan/luaframe/internal/scripts"
	"github.com/vovakirdan/luaframe/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2323").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.luaframe/ssh_host_ed25519.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Scripts offered to each connection. A single script runs directly,
	// several are offered through the menu.
	Scripts []scripts.Script

	// Session is the base session config. Fault is always replaced by
	// game.PropagateFault so one failing connection cannot stop the server.
	Session   game.Config
	TickRate  int
	ShowStats bool

	Store  *storage.Store
	Logger *log.Logger
}

// SSHServer wraps a Wish SSH server hosting script sessions.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	if len(cfg.Scripts) == 0 {
		return nil, errors.New("tui: no scripts to serve")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
		})
	}
	logger = logger.WithPrefix("luaframe-ssh")

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".luaframe", "ssh_host_ed25519")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			srv.programMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
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

	base := s.config.Session
	base.Fault = game.PropagateFault
	base.Logger = s.logger.With("user", sshSession.User())
	base.Seed = uint64(time.Now().UnixNano())

	model := NewSessionModel(SessionOptions{
		Scripts:   s.config.Scripts,
		Session:   base,
		TickRate:  s.config.TickRate,
		ShowStats: s.config.ShowStats,
		Store:     s.config.Store,
		Width:     pty.Window.Width,
		Height:    pty.Window.Height,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// programMiddleware runs one program per connection and finishes the hosted
// script once the program exits, whether the user quit or the connection dropped.
func (s *SSHServer) programMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		model, opts := s.teaHandler(sshSession)
		if model == nil {
			next(sshSession)
			return
		}
		p := tea.NewProgram(model, append(opts, bubbletea.MakeOptions(sshSession)...)...)

		ctx := sshSession.Context()
		_, windowChanges, _ := sshSession.Pty()
		go func() {
			for {
				select {
				case <-ctx.Done():
					p.Quit()
					return
				case w := <-windowChanges:
					p.Send(tea.WindowSizeMsg{Width: w.Width, Height: w.Height})
				}
			}
		}()

		final, err := p.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			s.logger.Error("program exited", "user", sshSession.User(), "error", err)
		}
		p.Kill()

		reason := storage.EndQuit
		if ctx.Err() != nil {
			reason = storage.EndDrop
		}
		if sm, ok := final.(SessionModel); ok {
			sm.Close(reason)
		}
		next(sshSession)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("connection opened",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("connection closed",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "scripts", len(s.config.Scripts))

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
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionOptions configures a SessionModel.
type SessionOptions struct {
	Scripts   []scripts.Script
	Session   game.Config
	TickRate  int
	ShowStats bool
	Store     *storage.Store
	Width     int
	Height    int
}

// SessionModel manages the full connection flow: menu -> script -> menu.
// With a single script there is no menu and leaving the script disconnects.
type SessionModel struct {
	opts     SessionOptions
	menu     MenuModel
	run      *Model
	lastErr  error
	width    int
	height   int
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	return SessionModel{
		opts:   opts,
		menu:   NewMenuModel(opts.Scripts, opts.Store, opts.Width, opts.Height),
		width:  opts.Width,
		height: opts.Height,
	}
}

// Init starts the single script, or shows the menu.
func (m SessionModel) Init() tea.Cmd {
	if len(m.opts.Scripts) == 1 {
		return func() tea.Msg { return startScriptMsg{script: m.opts.Scripts[0]} }
	}
	return m.menu.Init()
}

// startScriptMsg asks the session model to start a script.
type startScriptMsg struct {
	script scripts.Script
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}
	if start, ok := msg.(startScriptMsg); ok {
		return m.start(start.script)
	}

	if m.run != nil {
		return m.updateRun(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) start(s scripts.Script) (tea.Model, tea.Cmd) {
	run, err := NewModel(Options{
		Script:    s,
		Session:   m.opts.Session,
		TickRate:  m.opts.TickRate,
		ShowStats: m.opts.ShowStats,
		Width:     m.width,
		Height:    m.height,
		Store:     m.opts.Store,
		Embedded:  true,
	})
	if err != nil {
		m.lastErr = err
		if len(m.opts.Scripts) == 1 {
			// nothing to go back to; show the fault until a key is pressed
			m.run = &run
			return m, nil
		}
		m.menu = NewMenuModel(m.opts.Scripts, m.opts.Store, m.width, m.height)
		return m, nil
	}
	m.lastErr = nil
	m.run = &run
	return m, m.run.Init()
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if selected := m.menu.Selected(); selected != nil {
		return m.start(*selected)
	}
	if m.menu.WantsHistory() {
		// history is only offered locally
		m.menu = NewMenuModel(m.opts.Scripts, m.opts.Store, m.width, m.height)
		return m, nil
	}
	return m, cmd
}

// updateRun handles updates while a script runs.
func (m SessionModel) updateRun(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.run.Update(msg)
	if runModel, ok := newModel.(Model); ok {
		m.run = &runModel
	}

	single := len(m.opts.Scripts) == 1
	if m.run.IsQuitting() || (single && m.run.BackToMenu()) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.run.BackToMenu() {
		m.lastErr = m.run.Err()
		m.run = nil
		m.menu = NewMenuModel(m.opts.Scripts, m.opts.Store, m.width, m.height)
		return m, m.menu.Init()
	}
	return m, cmd
}

// Close finishes the running script, if it has not finished yet, and
// records reason as how it ended.
func (m SessionModel) Close(reason string) {
	if m.run != nil && !m.run.finished {
		m.run.finish(reason)
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.run != nil {
		return m.run.View()
	}
	if m.lastErr != nil {
		return FaultView(m.lastErr, m.width) + "\n" + m.menu.View()
	}
	return m.menu.View()
}
