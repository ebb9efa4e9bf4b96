package game

import (
	"bytes"
	"errors"
	"io"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/modules"
)

const harness = `
local fw = require "ejoy2d.framework"
local shader = require "ejoy2d.shader.c"
local sprite = require "ejoy2d.sprite.c"

calls = { init = 0, update = 0, vp = 0, draw = 0, pause = 0, resume = 0, errors = 0 }

local function maybe_fail(op)
	if fail_on == op then
		error("boom in " .. op)
	end
end

fw.inject {
	EJOY2D_INIT = function()
		maybe_fail("init")
		calls.init = calls.init + 1
	end,
	EJOY2D_UPDATE = function()
		maybe_fail("update")
		calls.update = calls.update + 1
	end,
	EJOY2D_VPUPDATE = function(step)
		maybe_fail("viewport")
		calls.vp = calls.vp + 1
		vp_step = step
	end,
	EJOY2D_DRAWFRAME = function()
		maybe_fail("draw")
		calls.draw = calls.draw + 1
		shader.draw(-1, {0, 0, 2, 1}, 0xffff0000)
		sprite.label("hi"):draw(0, 1)
	end,
	EJOY2D_TOUCH = function(x, y, phase, id)
		maybe_fail("touch")
		touch_args = {x, y, phase, id}
		return x > 5
	end,
	EJOY2D_GESTURE = function(kind, x1, y1, x2, y2, state)
		maybe_fail("gesture")
		gesture_args = {kind, x1, y1, x2, y2, state}
	end,
	EJOY2D_MESSAGE = function(id, state, data, n)
		maybe_fail("message")
		message_args = {id = id, state = state, data = data, n = n}
	end,
	EJOY2D_HANDLE_ERROR = function(kind, msg)
		calls.errors = calls.errors + 1
		err_kind, err_msg = kind, msg
		if fail_handler then
			error("handler broke")
		end
	end,
	EJOY2D_RESUME = function()
		maybe_fail("resume")
		calls.resume = calls.resume + 1
	end,
	EJOY2D_PAUSE = function()
		maybe_fail("pause")
		calls.pause = calls.pause + 1
	end,
}
`

type faultRecorder struct {
	faults []*ScriptError
}

func (r *faultRecorder) record(err *ScriptError) {
	r.faults = append(r.faults, err)
}

func testConfig(rec *faultRecorder) Config {
	return Config{
		Screen: core.NewScreen(20, 5),
		Logger: log.New(io.Discard),
		Fault:  rec.record,
	}
}

func newSession(t *testing.T, cfg Config, script string) *Session {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.LoadScript("harness", strings.NewReader(script)); err != nil {
		t.Fatalf("LoadScript() failed: %v", err)
	}
	return s
}

func startHarness(t *testing.T, cfg Config) *Session {
	t.Helper()
	s := newSession(t, cfg, harness)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return s
}

// field walks global tables: field(s, "calls", "update").
func field(s *Session, path ...string) lua.LValue {
	v := s.L.GetGlobal(path[0])
	for _, key := range path[1:] {
		t, ok := v.(*lua.LTable)
		if !ok {
			return lua.LNil
		}
		v = t.RawGetString(key)
	}
	return v
}

func count(s *Session, name string) int {
	n, _ := field(s, "calls", name).(lua.LNumber)
	return int(n)
}

func numbers(t *testing.T, v lua.LValue) []float64 {
	t.Helper()
	tbl, ok := v.(*lua.LTable)
	if !ok {
		t.Fatalf("expected table, got %v", v)
	}
	var out []float64
	for i := 1; i <= tbl.Len(); i++ {
		out = append(out, float64(tbl.RawGetInt(i).(lua.LNumber)))
	}
	return out
}

func TestBootstrap(t *testing.T) {
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	cfg.OS = "TEST"
	cfg.Version = 42
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if s.State() != Started {
		t.Errorf("State() = %v, expected started", s.State())
	}
	if got := s.L.GetGlobal("OS").String(); got != "TEST" {
		t.Errorf("OS = %q, expected TEST", got)
	}
	if got := s.L.GetGlobal("_EJOY_VER_"); got != lua.LNumber(42) {
		t.Errorf("_EJOY_VER_ = %v, expected 42", got)
	}

	loaded := s.L.GetField(s.L.GetGlobal("package"), "loaded")
	for _, name := range modules.Builtin() {
		if s.L.GetField(loaded, name) == lua.LNil {
			t.Errorf("module %s not loaded", name)
		}
	}
	if s.L.GetTop() != stackBaseline {
		t.Errorf("stack top = %d after bootstrap", s.L.GetTop())
	}
}

func TestBootstrapDefaults(t *testing.T) {
	s, err := New(Config{Logger: log.New(io.Discard), Fault: PropagateFault})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if s.LogicRate() != DefaultFrameRate || s.ViewportRate() != DefaultFrameRate {
		t.Errorf("rates = %d/%d, expected %d", s.LogicRate(), s.ViewportRate(), DefaultFrameRate)
	}
	if got := s.L.GetGlobal("OS").String(); got != DefaultOS {
		t.Errorf("OS = %q, expected %q", got, DefaultOS)
	}
	if s.L.GetGlobal("_EJOY_VER_") != lua.LNil {
		t.Error("_EJOY_VER_ should be unset when Version is zero")
	}
	if s.Screen().Width() != DefaultWidth {
		t.Errorf("screen width = %d, expected %d", s.Screen().Width(), DefaultWidth)
	}
}

func TestBootstrapSuppliedRuntime(t *testing.T) {
	L := lua.NewState()
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	cfg.Runtime = L
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()
	if s.L != L {
		t.Fatal("session did not adopt the supplied runtime")
	}

	// a runtime already hosting a session is refused and left untouched
	_, err = New(cfg)
	var serr *ScriptError
	if !errors.As(err, &serr) || serr.Kind != KindBootstrap {
		t.Fatalf("second New() = %v, expected a bootstrap fault", err)
	}
	if !strings.Contains(serr.Message, "multiple sessions") {
		t.Errorf("Message = %q", serr.Message)
	}
	if len(rec.faults) != 1 {
		t.Errorf("%d faults, expected 1", len(rec.faults))
	}
	if err := s.LoadScript("harness", strings.NewReader(harness)); err != nil {
		t.Fatalf("first session unusable after refused bootstrap: %v", err)
	}
}

func TestBootstrapVersionMismatch(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	L.SetGlobal("_VERSION", lua.LString("Lua 5.4"))

	rec := &faultRecorder{}
	cfg := testConfig(rec)
	cfg.Runtime = L
	_, err := New(cfg)
	var serr *ScriptError
	if !errors.As(err, &serr) || serr.Kind != KindBootstrap {
		t.Fatalf("New() = %v, expected a bootstrap fault", err)
	}
	if !strings.Contains(serr.Message, "version mismatch") {
		t.Errorf("Message = %q", serr.Message)
	}
}

func TestStartInitFailure(t *testing.T) {
	rec := &faultRecorder{}
	s := newSession(t, testConfig(rec), harness)
	s.L.SetGlobal("fail_on", lua.LString("init"))

	err := s.Start()
	var serr *ScriptError
	if !errors.As(err, &serr) {
		t.Fatalf("Start() = %v, expected *ScriptError", err)
	}
	if serr.Op != "init" || serr.Kind != KindRun {
		t.Errorf("ScriptError = %s/%s, expected %s/init", serr.Kind, serr.Op, KindRun)
	}
	if count(s, "errors") != 1 {
		t.Errorf("error handler called %d times, expected 1", count(s, "errors"))
	}
	if len(rec.faults) != 1 {
		t.Errorf("%d faults, expected 1", len(rec.faults))
	}
	if s.State() != Faulted {
		t.Errorf("State() = %v, expected faulted", s.State())
	}
	if count(s, "init") != 0 {
		t.Errorf("init completed %d times", count(s, "init"))
	}
	if s.L.GetTop() != stackBaseline {
		t.Errorf("stack top = %d after failed init", s.L.GetTop())
	}
	if err := s.Update(0.1); !errors.Is(err, ErrFaulted) {
		t.Errorf("Update() after failed init = %v, expected ErrFaulted", err)
	}
}

func TestStartRequiresInject(t *testing.T) {
	rec := &faultRecorder{}
	s := newSession(t, testConfig(rec), `local fw = require "ejoy2d.framework"`)

	if err := s.Start(); !errors.Is(err, ErrNotInjected) {
		t.Errorf("Start() = %v, expected ErrNotInjected", err)
	}
	if err := s.Update(0.1); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Update() before Start = %v, expected ErrNotRunning", err)
	}
}

func TestInjectIsAtomic(t *testing.T) {
	script := harness + `
		local fw = require "ejoy2d.framework"
		local ok, err = pcall(fw.inject, {
			EJOY2D_INIT = function() second = true end,
			EJOY2D_UPDATE = function() end,
		})
		inject_ok, inject_err = ok, err
		ok, err = pcall(fw.inject, { EJOY2D_INIT = 1 })
		bad_type_err = err
	`
	rec := &faultRecorder{}
	s := newSession(t, testConfig(rec), script)

	if field(s, "inject_ok") != lua.LFalse {
		t.Fatal("partial inject should fail")
	}
	if got := field(s, "inject_err").String(); !strings.Contains(got, "EJOY2D_DRAWFRAME is not found") {
		t.Errorf("inject error = %q, expected first missing name", got)
	}
	if got := field(s, "bad_type_err").String(); !strings.Contains(got, "EJOY2D_INIT is not found") {
		t.Errorf("non-function inject error = %q", got)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if field(s, "second") != lua.LNil {
		t.Error("failed inject replaced the init callback")
	}
	if count(s, "init") != 1 {
		t.Errorf("init called %d times, expected 1", count(s, "init"))
	}
}

func TestFailedInjectLeavesNothing(t *testing.T) {
	rec := &faultRecorder{}
	s := newSession(t, testConfig(rec), `
		local fw = require "ejoy2d.framework"
		pcall(fw.inject, { EJOY2D_INIT = function() end })
	`)

	if s.Injected() {
		t.Error("Injected() = true after failed inject")
	}
	if err := s.Start(); !errors.Is(err, ErrNotInjected) {
		t.Errorf("Start() = %v, expected ErrNotInjected", err)
	}
}

func TestInjectAfterStart(t *testing.T) {
	script := harness + `
		local fw = require "ejoy2d.framework"
		function reinject()
			local ok, err = pcall(fw.inject, {})
			reinject_err = err
		end
	`
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	s := newSession(t, cfg, script)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, expected ErrAlreadyStarted", err)
	}

	if err := s.L.CallByParam(lua.P{Fn: s.L.GetGlobal("reinject"), Protect: true}); err != nil {
		t.Fatalf("reinject failed: %v", err)
	}
	if got := field(s, "reinject_err").String(); !strings.Contains(got, "already injected") {
		t.Errorf("reinject error = %q", got)
	}
}

func TestLogicUpdateFixedStep(t *testing.T) {
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	cfg.LogicFPS = 10
	s := startHarness(t, cfg)

	// the first update seeds one step regardless of dt
	if err := s.Update(0.35); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if got := count(s, "update"); got != 1 {
		t.Errorf("after first update: %d calls, expected 1", got)
	}
	if st := s.Stats(); st.UpdateCount != 0 || st.CurFPS != 0 {
		t.Errorf("first update stats = %+v, expected zero count and fps", st)
	}

	if err := s.Update(0.25); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if got := count(s, "update"); got != 4 {
		t.Errorf("after second update: %d calls, expected 4", got)
	}
	if st := s.Stats(); st.UpdateCount != 1 || st.CurFPS != 4 {
		t.Errorf("stats = %+v, expected count 1 and fps 4", st)
	}
}

func TestLogicUpdateStepSum(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float32
		fires  int
	}{
		{"single step", []float32{0.125}, 1},
		{"uneven split", []float32{0.125, 0.25, 0.375, 0.25}, 8},
		{"sub-step jitter", []float32{0.0625, 0.0625, 0.0625, 0.0625}, 2},
		{"stall catch-up", []float32{2}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &faultRecorder{}
			cfg := testConfig(rec)
			cfg.LogicFPS = 8
			s := startHarness(t, cfg)

			_ = s.Update(1) // seed
			for _, dt := range tt.deltas {
				if err := s.Update(dt); err != nil {
					t.Fatalf("Update(%v) failed: %v", dt, err)
				}
			}
			if got := count(s, "update") - 1; got != tt.fires {
				t.Errorf("%d update calls, expected %d", got, tt.fires)
			}
		})
	}
}

func TestViewportIndependent(t *testing.T) {
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	cfg.LogicFPS = 10
	cfg.ViewportFPS = 4
	s := startHarness(t, cfg)

	_ = s.Update(0.35)
	_ = s.Update(0.25)

	if got := count(s, "update"); got != 4 {
		t.Errorf("update calls = %d, expected 4", got)
	}
	if got := count(s, "vp"); got != 2 {
		t.Errorf("viewport calls = %d, expected 2", got)
	}
	if got := field(s, "vp_step"); got != lua.LNumber(float32(0.25)) {
		t.Errorf("viewport step = %v, expected 0.25", got)
	}
}

func TestSetRates(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))

	if err := s.SetLogicRate(0); err == nil {
		t.Error("SetLogicRate(0) should fail")
	}
	if err := s.SetViewportRate(-1); err == nil {
		t.Error("SetViewportRate(-1) should fail")
	}
	if err := s.SetLogicRate(60); err != nil {
		t.Fatalf("SetLogicRate() failed: %v", err)
	}
	_ = s.Update(0.1)
	s.ResetClock()
	_ = s.Update(5) // reseeded: one step
	if got := count(s, "update"); got != 2 {
		t.Errorf("update calls = %d, expected 2", got)
	}
}

func TestUpdateZeroDelta(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))

	_ = s.Update(0.1)
	before := count(s, "update")
	if err := s.Update(0); err != nil {
		t.Fatalf("Update(0) failed: %v", err)
	}
	if count(s, "update") != before {
		t.Error("Update(0) should not fire the update callback")
	}
	if fps := s.Stats().CurFPS; !math.IsInf(float64(fps), 1) {
		t.Errorf("CurFPS = %v, expected +Inf", fps)
	}
}

func TestDrawStats(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))

	if err := s.Draw(); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}
	st := s.Stats()
	if st.DrawCalls != 2 || st.Objects != 2 {
		t.Errorf("stats = %+v, expected 2 draw calls and 2 objects", st)
	}
	if got := s.Screen().Row(1); !strings.HasPrefix(got, "hi") {
		t.Errorf("Row(1) = %q, expected label", got)
	}
	if got := s.Screen().GetCell(0, 0); got.Color != core.ColorBrightRed {
		t.Errorf("cell (0,0) = %+v, expected bright red quad", got)
	}
}

func TestTouch(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))

	suppress, err := s.Touch(3, 7, 2, core.TouchMove)
	if err != nil {
		t.Fatalf("Touch() failed: %v", err)
	}
	if !suppress {
		t.Error("Touch() = false, expected the callback's true")
	}
	expected := []float64{7, 2, float64(core.TouchMove) + 1, 3}
	if got := numbers(t, field(s, "touch_args")); !reflect.DeepEqual(got, expected) {
		t.Errorf("touch args = %v, expected %v", got, expected)
	}

	suppress, _ = s.Touch(0, 1, 1, core.TouchBegin)
	if suppress {
		t.Error("Touch() = true, expected false for x <= 5")
	}
	if s.L.GetTop() != stackBaseline {
		t.Errorf("stack top = %d after Touch", s.L.GetTop())
	}
}

func TestGestureAndMessage(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))

	if err := s.Gesture(core.GesturePan, 1, 2, 3, 4, core.GestureChanged); err != nil {
		t.Fatalf("Gesture() failed: %v", err)
	}
	expected := []float64{float64(core.GesturePan), 1, 2, 3, 4, float64(core.GestureChanged)}
	if got := numbers(t, field(s, "gesture_args")); !reflect.DeepEqual(got, expected) {
		t.Errorf("gesture args = %v, expected %v", got, expected)
	}

	if err := s.Message(core.Message{ID: 9, Number: 1.5}); err != nil {
		t.Fatalf("Message() failed: %v", err)
	}
	if field(s, "message_args", "state") != lua.LNil || field(s, "message_args", "data") != lua.LNil {
		t.Error("unset message fields should reach the script as nil")
	}
	if field(s, "message_args", "id") != lua.LNumber(9) || field(s, "message_args", "n") != lua.LNumber(1.5) {
		t.Errorf("message id/n = %v/%v", field(s, "message_args", "id"), field(s, "message_args", "n"))
	}

	_ = s.Message(core.NewMessage(1, "key", "x", 0))
	if field(s, "message_args", "state").String() != "key" || field(s, "message_args", "data").String() != "x" {
		t.Error("message strings not delivered")
	}
}

func TestPauseResume(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))

	if err := s.Pause(); err != nil {
		t.Fatalf("Pause() failed: %v", err)
	}
	if s.State() != Paused {
		t.Errorf("State() = %v, expected paused", s.State())
	}

	// events still flow while paused
	if _, err := s.Touch(0, 0, 0, core.TouchBegin); err != nil {
		t.Errorf("Touch() while paused failed: %v", err)
	}
	if err := s.Update(0.1); err != nil {
		t.Errorf("Update() while paused failed: %v", err)
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}
	if s.State() != Running {
		t.Errorf("State() = %v, expected running", s.State())
	}
	if count(s, "pause") != 1 || count(s, "resume") != 1 {
		t.Errorf("pause/resume calls = %d/%d", count(s, "pause"), count(s, "resume"))
	}
}

func TestScriptErrorEscalation(t *testing.T) {
	tests := []struct {
		op   string
		call func(s *Session) error
	}{
		{"update", func(s *Session) error { return s.Update(0.1) }},
		{"viewport", func(s *Session) error { return s.Update(0.1) }},
		{"draw", func(s *Session) error { return s.Draw() }},
		{"touch", func(s *Session) error { _, err := s.Touch(0, 1, 1, core.TouchBegin); return err }},
		{"gesture", func(s *Session) error { return s.Gesture(core.GestureTap, 0, 0, 0, 0, core.GestureEnded) }},
		{"message", func(s *Session) error { return s.Message(core.Message{ID: 1}) }},
		{"pause", func(s *Session) error { return s.Pause() }},
		{"resume", func(s *Session) error { return s.Resume() }},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			rec := &faultRecorder{}
			s := startHarness(t, testConfig(rec))
			s.L.SetGlobal("fail_on", lua.LString(tt.op))

			err := tt.call(s)
			var serr *ScriptError
			if !errors.As(err, &serr) {
				t.Fatalf("error = %v, expected *ScriptError", err)
			}
			if serr.Kind != KindRun || serr.Op != tt.op {
				t.Errorf("ScriptError = %s/%s, expected %s/%s", serr.Kind, serr.Op, KindRun, tt.op)
			}
			if count(s, "errors") != 1 {
				t.Errorf("error handler called %d times, expected 1", count(s, "errors"))
			}
			if field(s, "err_kind").String() != KindRun {
				t.Errorf("handler kind = %v", field(s, "err_kind"))
			}
			if msg := field(s, "err_msg").String(); !strings.Contains(msg, "boom in "+tt.op) || !strings.Contains(msg, "stack traceback") {
				t.Errorf("handler message = %q", msg)
			}
			if len(rec.faults) != 1 {
				t.Errorf("%d faults, expected 1", len(rec.faults))
			}
			if s.State() != Faulted {
				t.Errorf("State() = %v, expected faulted", s.State())
			}
			if s.L.GetTop() != stackBaseline {
				t.Errorf("stack top = %d after fault", s.L.GetTop())
			}
			if err := s.Draw(); !errors.Is(err, ErrFaulted) {
				t.Errorf("Draw() after fault = %v, expected ErrFaulted", err)
			}
		})
	}
}

func TestErrorHandlerFailure(t *testing.T) {
	rec := &faultRecorder{}
	s := startHarness(t, testConfig(rec))
	s.L.SetGlobal("fail_on", lua.LString("draw"))
	s.L.SetGlobal("fail_handler", lua.LTrue)

	err := s.Draw()
	var serr *ScriptError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, expected *ScriptError", err)
	}
	if serr.Kind != "!"+KindRun {
		t.Errorf("Kind = %q, expected !%s", serr.Kind, KindRun)
	}
	if !strings.Contains(serr.Message, "handler broke") {
		t.Errorf("Message = %q", serr.Message)
	}
	if len(rec.faults) != 1 {
		t.Errorf("%d faults, expected 1", len(rec.faults))
	}
}

func TestLoadErrors(t *testing.T) {
	rec := &faultRecorder{}
	s, err := New(testConfig(rec))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	err = s.LoadScript("bad", strings.NewReader("function ("))
	var serr *ScriptError
	if !errors.As(err, &serr) || serr.Kind != KindSyntax {
		t.Fatalf("LoadScript() = %v, expected syntax ScriptError", err)
	}
	if s.State() != Faulted {
		t.Errorf("State() = %v, expected faulted", s.State())
	}
	if err := s.Start(); !errors.Is(err, ErrFaulted) {
		t.Errorf("Start() = %v, expected ErrFaulted", err)
	}

	s2, _ := New(testConfig(rec))
	defer s2.Close()
	if err := s2.LoadFile("does/not/exist.lua"); !errors.As(err, &serr) || serr.Kind != KindFile {
		t.Errorf("LoadFile() = %v, expected file ScriptError", err)
	}
}

func TestCloseOrder(t *testing.T) {
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	var order []string
	cfg.OnRelease = func(part string) { order = append(order, part) }
	s := startHarness(t, cfg)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	expected := []string{PartLua, "label", "texture", "shader"}
	if !reflect.DeepEqual(order, expected) {
		t.Errorf("release order = %v, expected %v", order, expected)
	}
	if err := s.Update(0.1); !errors.Is(err, ErrClosed) {
		t.Errorf("Update() after Close = %v, expected ErrClosed", err)
	}
	if s.State() != Stopped {
		t.Errorf("State() = %v, expected stopped", s.State())
	}
}

func TestPrintUsesLogger(t *testing.T) {
	var buf bytes.Buffer
	rec := &faultRecorder{}
	cfg := testConfig(rec)
	cfg.Logger = log.New(&buf)
	newSession(t, cfg, `print("hello from lua")`)

	if got := buf.String(); !strings.Contains(got, "hello from lua") || !strings.Contains(got, "script") {
		t.Errorf("log output = %q", got)
	}
}

func TestEventNames(t *testing.T) {
	if len(Events()) != 10 {
		t.Fatalf("Events() has %d entries, expected 10", len(Events()))
	}
	if EventViewportUpdate.String() != "EJOY2D_VPUPDATE" {
		t.Errorf("EventViewportUpdate = %q", EventViewportUpdate)
	}
	if Event(99).String() != "Event(99)" {
		t.Errorf("Event(99) = %q", Event(99))
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	recA, recB := &faultRecorder{}, &faultRecorder{}
	cfgA, cfgB := testConfig(recA), testConfig(recB)
	cfgA.LogicFPS, cfgB.LogicFPS = 10, 10
	a := startHarness(t, cfgA)
	b := startHarness(t, cfgB)

	for _, s := range []*Session{a, b} {
		if err := s.Update(0.1); err != nil {
			t.Fatalf("Update() failed: %v", err)
		}
	}
	if err := a.Update(0.25); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if count(a, "update") != 4 || count(b, "update") != 1 {
		t.Errorf("update calls = %d/%d, expected 4/1", count(a, "update"), count(b, "update"))
	}

	b.L.SetGlobal("fail_on", lua.LString("update"))
	if err := b.Update(0.1); err == nil {
		t.Fatal("Update() on failing session returned nil")
	}
	if b.State() != Faulted || len(recB.faults) != 1 {
		t.Errorf("b: state %v with %d faults", b.State(), len(recB.faults))
	}

	if err := a.Update(0.1); err != nil {
		t.Fatalf("Update() on healthy session failed: %v", err)
	}
	if err := a.Draw(); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}
	if a.State() != Running || len(recA.faults) != 0 {
		t.Errorf("a: state %v with %d faults", a.State(), len(recA.faults))
	}
	if field(a, "fail_on") != lua.LNil {
		t.Error("globals leaked between sessions")
	}
}
