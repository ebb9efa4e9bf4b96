package game

import (
	lua "github.com/yuin/gopher-lua"
)

// call runs fn through the protected dispatch path and returns its nret
// results. On failure the script's error handler is notified once and the
// fault strategy is invoked. The stack is reset to the baseline either way.
func (s *Session) call(op string, fn *lua.LFunction, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	L := s.L
	defer L.SetTop(stackBaseline)

	err := L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
	if err != nil {
		serr := newScriptError(op, err)
		if herr := s.handleError(serr); herr != nil {
			return nil, herr
		}
		return nil, s.fail(serr)
	}

	rets := make([]lua.LValue, nret)
	for i := range rets {
		rets[i] = L.Get(i - nret)
	}
	return rets, nil
}

// handleError passes the fault to the script's error handler. A failure of
// the handler is itself a fault and is returned.
func (s *Session) handleError(serr *ScriptError) error {
	s.logger.Error("script error", "op", serr.Op, "kind", serr.Kind, "err", serr.Message)
	if s.callbacks == nil {
		return nil
	}

	handler := s.callbacks[EventHandleError]
	err := s.L.CallByParam(lua.P{Fn: handler, NRet: 0, Protect: true},
		lua.LString(serr.Kind), lua.LString(serr.Message))
	if err == nil {
		return nil
	}

	herr := newScriptError(serr.Op, err)
	herr.Kind = "!" + herr.Kind
	return s.fail(herr)
}

// fail moves the session to Faulted and runs the fault strategy.
func (s *Session) fail(err *ScriptError) error {
	s.state = Faulted
	s.fault(err)
	return err
}
