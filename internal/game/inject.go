package game

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Event identifies one of the lifecycle callbacks a script injects.
type Event int

const (
	EventInit Event = iota
	EventUpdate
	EventDrawFrame
	EventViewportUpdate
	EventTouch
	EventGesture
	EventMessage
	EventHandleError
	EventResume
	EventPause

	eventCount
)

var eventNames = [eventCount]string{
	EventInit:           "EJOY2D_INIT",
	EventUpdate:         "EJOY2D_UPDATE",
	EventDrawFrame:      "EJOY2D_DRAWFRAME",
	EventViewportUpdate: "EJOY2D_VPUPDATE",
	EventTouch:          "EJOY2D_TOUCH",
	EventGesture:        "EJOY2D_GESTURE",
	EventMessage:        "EJOY2D_MESSAGE",
	EventHandleError:    "EJOY2D_HANDLE_ERROR",
	EventResume:         "EJOY2D_RESUME",
	EventPause:          "EJOY2D_PAUSE",
}

// String returns the key the script uses for the callback.
func (e Event) String() string {
	if e < 0 || e >= eventCount {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// Events returns every event in injection order.
func Events() []Event {
	events := make([]Event, eventCount)
	for i := range events {
		events[i] = Event(i)
	}
	return events
}

type callbacks [eventCount]*lua.LFunction

var errAlreadyInjected = errors.New("callbacks already injected")

// inject validates every required callback in tbl and only then replaces
// the session's callback set.
func (s *Session) inject(L *lua.LState, tbl *lua.LTable) error {
	if s.state != Started {
		return errAlreadyInjected
	}

	var next callbacks
	for _, ev := range Events() {
		fn, ok := L.GetField(tbl, ev.String()).(*lua.LFunction)
		if !ok {
			return fmt.Errorf("%s is not found", ev)
		}
		next[ev] = fn
	}

	s.callbacks = &next
	s.logger.Debug("callbacks injected", "script", s.script)
	return nil
}

// Injected reports whether the script has supplied its callbacks.
func (s *Session) Injected() bool {
	return s.callbacks != nil
}
