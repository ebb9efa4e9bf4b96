package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/game"
	"github.com/vovakirdan/luaframe/internal/scripts"
	"github.com/vovakirdan/luaframe/internal/storage"
)

// KeyMessageID is the message id keys are forwarded under.
const KeyMessageID = 1

// Options configures a hosted script run.
type Options struct {
	Script scripts.Script

	// Session is the base session config; Screen and Assets are filled in.
	Session game.Config

	TickRate  int
	ShowStats bool
	Width     int
	Height    int

	// Store, if set, receives the session record when the run ends.
	Store *storage.Store

	// Embedded runs inside another model: Back ends the run instead of quitting.
	Embedded bool

	// ExitOnFault quits the program as soon as the session faults instead
	// of showing the fault.
	ExitOnFault bool
}

// Model is the Bubble Tea model hosting one script session.
type Model struct {
	opts     Options
	session  *game.Session
	screen   *core.Screen
	gestures *GestureRecognizer
	keys     RunKeyMap
	help     help.Model
	logger   *log.Logger

	width     int
	height    int
	showStats bool
	showHelp  bool
	started   time.Time
	lastTick  time.Time

	err        error
	endReason  string
	finished   bool
	quitting   bool
	backToMenu bool
}

// NewModel creates the session, loads the script and starts it.
func NewModel(opts Options) (Model, error) {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.Width <= 0 {
		opts.Width = game.DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = game.DefaultHeight
	}

	m := Model{
		opts:      opts,
		gestures:  NewGestureRecognizer(),
		keys:      DefaultRunKeyMap(),
		help:      help.New(),
		width:     opts.Width,
		height:    opts.Height,
		showStats: opts.ShowStats,
		started:   time.Now(),
	}
	m.screen = core.NewScreen(opts.Width, m.screenHeight())

	cfg := opts.Session
	cfg.Screen = m.screen
	cfg.Assets = opts.Script.Assets()
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	m.logger = cfg.Logger

	sess, err := game.New(cfg)
	if err != nil {
		m.err = err
		m.finished = true
		return m, err
	}
	m.session = sess

	src, err := opts.Script.Open()
	if err != nil {
		err = fmt.Errorf("tui: open %s: %w", opts.Script.Name, err)
		m.fail(err)
		return m, err
	}
	err = sess.LoadScript(opts.Script.Name, src)
	src.Close()
	if err == nil {
		err = sess.Start()
	}
	if err != nil {
		m.fail(err)
		return m, err
	}
	return m, nil
}

// screenHeight is the terminal height minus the status line.
func (m Model) screenHeight() int {
	h := m.height
	if m.showStats && h > 1 {
		h--
	}
	return h
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if next.err != nil && next.opts.ExitOnFault && !next.quitting {
		next.quitting = true
		return next, tea.Quit
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input: host keys first, the rest goes to the script.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish(storage.EndQuit)
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.finish(storage.EndQuit)
		if m.opts.Embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	// A fault leaves only the exit keys working.
	if m.finished {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
	case key.Matches(msg, m.keys.Stats):
		m.showStats = !m.showStats
		m.screen.Resize(m.width, m.screenHeight())
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
	default:
		if err := m.session.Message(core.NewMessage(KeyMessageID, "key", msg.String(), 0)); err != nil {
			m.fail(err)
		}
	}
	return m, nil
}

func (m *Model) togglePause() {
	var err error
	switch m.session.State() {
	case game.Running:
		err = m.session.Pause()
	case game.Paused:
		err = m.session.Resume()
	}
	if err != nil {
		m.fail(err)
	}
}

// handleMouse feeds the gesture recognizer and delivers what it produced.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.finished {
		return m, nil
	}
	m.deliver(m.gestures.Mouse(msg, time.Now()))
	return m, nil
}

func (m *Model) deliver(in Input) {
	for _, t := range in.Touches {
		suppress, err := m.session.Touch(t.ID, t.X, t.Y, t.Phase)
		if err != nil {
			m.fail(err)
			return
		}
		if suppress && t.Phase == core.TouchBegin {
			m.gestures.Suppress()
		}
	}
	for _, g := range in.Gestures {
		if err := m.session.Gesture(g.Kind, g.X1, g.Y1, g.X2, g.Y2, g.State); err != nil {
			m.fail(err)
			return
		}
	}
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.screen.Resize(m.width, m.screenHeight())
	return m, nil
}

// handleTick advances the session by the wall-clock time since the last tick.
// A paused session is drawn but its clock does not advance.
func (m Model) handleTick(now time.Time) (Model, tea.Cmd) {
	if m.finished {
		return m, nil
	}

	dt := 1 / float32(m.opts.TickRate)
	if !m.lastTick.IsZero() {
		dt = float32(now.Sub(m.lastTick).Seconds())
	}
	m.lastTick = now

	m.deliver(m.gestures.Tick(now))
	if m.finished {
		return m, nil
	}

	if m.session.State() == game.Running {
		if err := m.session.Update(dt); err != nil {
			m.fail(err)
			return m, nil
		}
	}
	if err := m.session.Draw(); err != nil {
		m.fail(err)
		return m, nil
	}

	return m, tickCmd(m.opts.TickRate)
}

// fail ends the run on a session error. Under the abort strategy the
// process has already exited by the time this runs.
func (m *Model) fail(err error) {
	m.err = err
	m.finish(storage.EndFault)
}

// finish closes the session and records it once.
func (m *Model) finish(reason string) {
	if m.finished {
		return
	}
	m.finished = true
	m.endReason = reason

	if m.opts.Store != nil && m.session != nil {
		if _, err := m.opts.Store.SaveSession(m.Record()); err != nil {
			m.logger.Warn("could not save session", "err", err)
		}
	}
	if m.session != nil {
		if err := m.session.Close(); err != nil {
			m.logger.Warn("session close", "err", err)
		}
	}
}

// Record summarizes the run for session history.
func (m Model) Record() storage.SessionRecord {
	rec := storage.SessionRecord{
		Script:    m.opts.Script.ID(),
		StartedAt: m.started,
		Duration:  time.Since(m.started),
		EndReason: m.endReason,
	}
	if m.session != nil {
		st := m.session.Stats()
		rec.UpdateCount = st.UpdateCount
		rec.LastFPS = float64(st.CurFPS)
		rec.DrawCalls = st.DrawCalls
		rec.Objects = st.Objects
	}
	var serr *game.ScriptError
	if errors.As(m.err, &serr) {
		rec.FaultKind = serr.Kind
		rec.FaultMessage = serr.Message
	} else if m.err != nil {
		rec.FaultMessage = m.err.Error()
	}
	return rec
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".luaframe", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	name := strings.TrimSuffix(m.opts.Script.Name, filepath.Ext(m.opts.Script.Name))
	filename := fmt.Sprintf("%s_%s.txt", name, time.Now().Format("20060102_150405"))

	//nolint:errcheck // Best-effort save, the script keeps running regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the session screen and the status line.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	if m.err != nil {
		return FaultView(m.err, m.width) + "\n" + statusStyle.Render("esc/q: leave")
	}

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	} else if m.showStats && m.session != nil {
		b.WriteString("\n")
		b.WriteString(StatusLine(m.opts.Script.Title, m.session.Stats(), m.session.State(), m.width))
	}
	return b.String()
}

// Err returns the error that ended the run, if any.
func (m Model) Err() error {
	return m.err
}

// Session returns the hosted session.
func (m Model) Session() *game.Session {
	return m.session
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run hosts the script in the terminal until it quits or faults.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		if !m.finished {
			m.finish(storage.EndQuit)
		}
		return m.Err()
	}
	return nil
}
