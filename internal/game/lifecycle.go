package game

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
)

// active reports whether lifecycle events may be delivered.
func (s *Session) active() error {
	if s.state == Running || s.state == Paused {
		return nil
	}
	return s.stateError()
}

// Update advances the logic accumulator and then the viewport accumulator
// by dt seconds, calling the update callbacks once per elapsed fixed step.
//
// The first update after a reset ignores dt and runs exactly one step.
// A dt <= 0 on later updates adds no time and records an infinite or
// negative fps; it never panics.
func (s *Session) Update(dt float32) error {
	if err := s.active(); err != nil {
		return err
	}
	if err := s.logicUpdate(dt); err != nil {
		return err
	}
	return s.viewportUpdate(dt)
}

func (s *Session) logicUpdate(dt float32) error {
	step := 1 / float32(s.logicFrame)
	if s.logicTime == 0 {
		s.realTime = step
		s.updateCount = 0
	} else {
		s.realTime += dt
		s.updateCount++
		s.curFPS = 1 / dt
	}

	for s.logicTime < s.realTime {
		s.logicTime += step
		if _, err := s.call("update", s.callbacks[EventUpdate], 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) viewportUpdate(dt float32) error {
	step := 1 / float32(s.viewportFrame)
	if s.vpLogicTime == 0 {
		s.vpRealTime = step
	} else {
		s.vpRealTime += dt
	}

	for s.vpLogicTime < s.vpRealTime {
		s.vpLogicTime += step
		if _, err := s.call("viewport", s.callbacks[EventViewportUpdate], 0, lua.LNumber(step)); err != nil {
			return err
		}
	}
	return nil
}

// ResetClock zeroes both accumulators so the next Update seeds them again.
func (s *Session) ResetClock() {
	s.logicTime, s.realTime = 0, 0
	s.vpLogicTime, s.vpRealTime = 0, 0
	s.updateCount = 0
}

// Draw calls the draw callback, flushes the shader and label batches and
// records the frame's draw call and object counts.
func (s *Session) Draw() error {
	if err := s.active(); err != nil {
		return err
	}

	s.render.BeginFrame()
	if _, err := s.call("draw", s.callbacks[EventDrawFrame], 0); err != nil {
		return err
	}
	if err := s.render.EndFrame(); err != nil {
		return fmt.Errorf("game: flush frame: %w", err)
	}
	s.lastDrawCall = s.render.Shader.DrawCalls()
	s.lastObjCount = s.render.Shader.Objects()
	return nil
}

// Touch delivers a touch as (x, y, phase+1, id) and returns the callback's
// suppress-gesture flag.
func (s *Session) Touch(id int, x, y float32, phase core.TouchPhase) (bool, error) {
	if err := s.active(); err != nil {
		return false, err
	}
	rets, err := s.call("touch", s.callbacks[EventTouch], 1,
		lua.LNumber(x), lua.LNumber(y), lua.LNumber(int(phase)+1), lua.LNumber(id))
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(rets[0]), nil
}

// Gesture delivers a recognized gesture as (kind, x1, y1, x2, y2, state).
func (s *Session) Gesture(kind core.GestureKind, x1, y1, x2, y2 float64, state core.GestureState) error {
	if err := s.active(); err != nil {
		return err
	}
	_, err := s.call("gesture", s.callbacks[EventGesture], 0,
		lua.LNumber(kind), lua.LNumber(x1), lua.LNumber(y1),
		lua.LNumber(x2), lua.LNumber(y2), lua.LNumber(state))
	return err
}

// Message delivers a host message as (id, state, data, n). Unset state
// and data reach the script as nil.
func (s *Session) Message(m core.Message) error {
	if err := s.active(); err != nil {
		return err
	}
	var state, data lua.LValue = lua.LNil, lua.LNil
	if m.State != nil {
		state = lua.LString(*m.State)
	}
	if m.Data != nil {
		data = lua.LString(*m.Data)
	}
	_, err := s.call("message", s.callbacks[EventMessage], 0,
		lua.LNumber(m.ID), state, data, lua.LNumber(m.Number))
	return err
}

// Pause notifies the script and marks the session paused. It does not stop
// Update or Draw; the host decides whether to keep ticking.
func (s *Session) Pause() error {
	if err := s.active(); err != nil {
		return err
	}
	if _, err := s.call("pause", s.callbacks[EventPause], 0); err != nil {
		return err
	}
	s.state = Paused
	return nil
}

// Resume notifies the script and marks the session running again.
func (s *Session) Resume() error {
	if err := s.active(); err != nil {
		return err
	}
	if _, err := s.call("resume", s.callbacks[EventResume], 0); err != nil {
		return err
	}
	s.state = Running
	return nil
}
