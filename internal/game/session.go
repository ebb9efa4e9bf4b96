// Package game embeds a Lua runtime and drives a script through the frame
// lifecycle: fixed-step logic and viewport updates, draw, input, messages,
// pause/resume and error escalation.
//
// A Session is single-threaded. Every method must be called from the
// goroutine that drives the host loop.
package game

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/modules"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

// Lifecycle is the state of a session.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Started                 // runtime bootstrapped, waiting for Start
	Running
	Paused
	Stopped
	Faulted // a script fault was propagated; only Close is allowed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Started:
		return "started"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// stackBaseline is the stack depth restored after every script call.
const stackBaseline = 0

// registryMarker is set in the Lua registry once a runtime is bootstrapped.
const registryMarker = "luaframe.session"

// Part names reported to Config.OnRelease besides the render subsystems.
const PartLua = "lua"

// Stats is a snapshot of the session's timing and draw statistics.
type Stats struct {
	UpdateCount  int
	CurFPS       float32
	DrawCalls    int
	Objects      int
	LogicTime    float32
	ViewportTime float32
}

// Session is one running script: a Lua runtime, its render context and
// the fixed-step accumulators.
type Session struct {
	cfg    Config
	logger *log.Logger
	fault  FaultFunc

	L         *lua.LState
	render    *render.Context
	callbacks *callbacks
	state     Lifecycle
	script    string

	logicFrame    int
	viewportFrame int

	logicTime   float32
	realTime    float32
	vpLogicTime float32
	vpRealTime  float32
	updateCount int
	curFPS      float32

	lastDrawCall int
	lastObjCount int
}

// New creates a session and bootstraps its runtime: the version check,
// the OS and _EJOY_VER_ globals, every capability module in order, then
// the shader and the label cache.
func New(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:           cfg,
		logger:        cfg.Logger,
		fault:         cfg.Fault,
		render:        render.NewContext(cfg.Screen),
		logicFrame:    cfg.LogicFPS,
		viewportFrame: cfg.ViewportFPS,
	}
	s.render.OnRelease = cfg.OnRelease

	s.L = cfg.Runtime
	if s.L == nil {
		s.L = lua.NewState()
	}
	if err := s.bootstrap(); err != nil {
		if cfg.Runtime == nil {
			s.L.Close()
		}
		s.render.Release()
		s.state = Stopped
		serr := &ScriptError{Kind: KindBootstrap, Op: "bootstrap", Message: err.Error(), Cause: err}
		s.fault(serr)
		return nil, serr
	}

	s.state = Started
	s.logger.Debug("session created", "logic_fps", s.logicFrame, "viewport_fps", s.viewportFrame)
	return s, nil
}

func (s *Session) bootstrap() error {
	L := s.L
	if v := L.GetGlobal("_VERSION"); v.String() != lua.LuaVersion {
		return fmt.Errorf("lua version mismatch: need %s, runtime provides %s", lua.LuaVersion, v)
	}
	reg := L.G.Registry
	if reg.RawGetString(registryMarker) != lua.LNil {
		return fmt.Errorf("multiple sessions detected in one runtime")
	}
	reg.RawSetString(registryMarker, lua.LTrue)
	L.Panic = s.panic

	L.SetGlobal("OS", lua.LString(s.cfg.OS))
	if s.cfg.Version != 0 {
		L.SetGlobal("_EJOY_VER_", lua.LNumber(s.cfg.Version))
	}
	L.SetGlobal("print", L.NewFunction(s.print))

	env := &registry.Env{
		Render: s.render,
		Logger: s.logger,
		Inject: s.inject,
		FS:     s.cfg.Assets,
		Seed:   s.cfg.Seed,
	}
	require := L.GetGlobal("require")
	for _, name := range modules.Builtin() {
		m, err := registry.Create(name)
		if err != nil {
			return err
		}
		L.PreloadModule(name, m.Open(env))
		if err := L.CallByParam(lua.P{Fn: require, NRet: 1, Protect: true}, lua.LString(name)); err != nil {
			return fmt.Errorf("require %s: %w", name, err)
		}
	}
	L.SetTop(stackBaseline)

	return s.render.Init()
}

// panic is the runtime's last-resort hook for errors raised outside any
// protected call.
func (s *Session) panic(L *lua.LState) {
	msg := L.Get(-1).String()
	err := &ScriptError{Kind: KindRun, Op: "panic", Message: msg}
	s.fail(err)
	panic(err)
}

// print routes the script's print to the logger.
func (s *Session) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.logger.WithPrefix("script").Info(strings.Join(parts, "\t"))
	return 0
}

// LoadScript compiles and runs the embedding script. The script is expected
// to require its modules and call inject.
func (s *Session) LoadScript(name string, r io.Reader) error {
	if s.state != Started {
		return s.stateError()
	}
	s.script = name

	fn, err := s.L.Load(r, name)
	if err != nil {
		return s.fail(&ScriptError{Kind: KindSyntax, Op: "load", Message: err.Error(), Cause: err})
	}
	_, err = s.call("load", fn, 0)
	return err
}

// LoadFile loads the embedding script from path.
func (s *Session) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return s.fail(&ScriptError{Kind: KindFile, Op: "load", Message: err.Error(), Cause: err})
	}
	defer f.Close()

	return s.LoadScript(filepath.Base(path), f)
}

// Start calls the script's init callback once and moves the session to Running.
func (s *Session) Start() error {
	switch {
	case s.state == Running || s.state == Paused:
		return ErrAlreadyStarted
	case s.state != Started:
		return s.stateError()
	case s.callbacks == nil:
		return ErrNotInjected
	}

	s.state = Running
	if _, err := s.call("init", s.callbacks[EventInit], 0); err != nil {
		return err
	}
	s.logger.Debug("session started", "script", s.script)
	return nil
}

// SetLogicRate changes the logic frame rate.
func (s *Session) SetLogicRate(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("game: invalid logic rate %d", fps)
	}
	s.logicFrame = fps
	return nil
}

// SetViewportRate changes the viewport frame rate.
func (s *Session) SetViewportRate(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("game: invalid viewport rate %d", fps)
	}
	s.viewportFrame = fps
	return nil
}

// LogicRate returns the logic frame rate.
func (s *Session) LogicRate() int { return s.logicFrame }

// ViewportRate returns the viewport frame rate.
func (s *Session) ViewportRate() int { return s.viewportFrame }

// State returns the lifecycle state.
func (s *Session) State() Lifecycle { return s.state }

// Script returns the name of the loaded script.
func (s *Session) Script() string { return s.script }

// Screen returns the render target.
func (s *Session) Screen() *core.Screen { return s.render.Screen }

// Stats returns the current statistics.
func (s *Session) Stats() Stats {
	return Stats{
		UpdateCount:  s.updateCount,
		CurFPS:       s.curFPS,
		DrawCalls:    s.lastDrawCall,
		Objects:      s.lastObjCount,
		LogicTime:    s.logicTime,
		ViewportTime: s.vpLogicTime,
	}
}

// Close tears the session down: the runtime first, then labels, textures
// and the shader. It is safe to call more than once.
func (s *Session) Close() error {
	if s.state == Stopped {
		return nil
	}
	s.state = Stopped

	s.L.Close()
	if s.cfg.OnRelease != nil {
		s.cfg.OnRelease(PartLua)
	}
	s.render.Release()
	s.logger.Debug("session closed", "script", s.script, "updates", s.updateCount)
	return nil
}

func (s *Session) stateError() error {
	switch s.state {
	case Faulted:
		return ErrFaulted
	case Stopped:
		return ErrClosed
	default:
		return ErrNotRunning
	}
}
