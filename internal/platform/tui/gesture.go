package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/luaframe/internal/core"
)

// Gesture recognizer timing, tuned for terminal mouse reporting.
const (
	tapMaxDuration  = 300 * time.Millisecond
	doubleTapWindow = 400 * time.Millisecond
	pressDuration   = 500 * time.Millisecond
	pinchIdle       = 300 * time.Millisecond
	pinchStep       = 0.1
	panThreshold    = 1 // cells
)

// TouchEvent is a touch derived from a mouse event.
type TouchEvent struct {
	ID    int
	X, Y  float32
	Phase core.TouchPhase
}

// GestureEvent is a recognized gesture. For pan and press, (X1, Y1) is the
// start point and (X2, Y2) the current point. For pinch, (X1, Y1) is the
// focus and X2 the accumulated scale.
type GestureEvent struct {
	Kind           core.GestureKind
	X1, Y1, X2, Y2 float64
	State          core.GestureState
}

// Input is what one mouse event or tick produced.
type Input struct {
	Touches  []TouchEvent
	Gestures []GestureEvent
}

// GestureRecognizer turns terminal mouse events into touches and gestures.
// The left button is touch 0; the wheel pinches.
type GestureRecognizer struct {
	down       bool
	suppressed bool
	startX     int
	startY     int
	lastX      int
	lastY      int
	downAt     time.Time
	panning    bool
	pressing   bool

	lastTapAt time.Time
	lastTapX  int
	lastTapY  int

	pinching   bool
	pinchAt    time.Time
	pinchScale float64
	pinchX     int
	pinchY     int
}

// NewGestureRecognizer creates an idle recognizer.
func NewGestureRecognizer() *GestureRecognizer {
	return &GestureRecognizer{}
}

// Suppress stops gesture recognition for the current touch, as requested
// by a script whose touch callback returned true.
func (g *GestureRecognizer) Suppress() {
	if g.down {
		g.suppressed = true
	}
}

// Mouse processes one mouse event.
func (g *GestureRecognizer) Mouse(msg tea.MouseMsg, now time.Time) Input {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		return g.pinch(msg.X, msg.Y, pinchStep, now)
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		return g.pinch(msg.X, msg.Y, -pinchStep, now)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return g.press(msg.X, msg.Y, now)
	case msg.Action == tea.MouseActionMotion && g.down:
		return g.move(msg.X, msg.Y)
	case msg.Action == tea.MouseActionRelease && g.down:
		return g.release(msg.X, msg.Y, now)
	}
	return Input{}
}

// Tick finishes time-based gestures: a long press and an idle pinch.
func (g *GestureRecognizer) Tick(now time.Time) Input {
	var in Input
	if g.down && !g.suppressed && !g.panning && !g.pressing && now.Sub(g.downAt) >= pressDuration {
		g.pressing = true
		in.Gestures = append(in.Gestures, g.gesture(core.GesturePress, core.GestureBegan))
	}
	if g.pinching && now.Sub(g.pinchAt) >= pinchIdle {
		g.pinching = false
		in.Gestures = append(in.Gestures, GestureEvent{
			Kind: core.GesturePinch, X1: float64(g.pinchX), Y1: float64(g.pinchY),
			X2: g.pinchScale, State: core.GestureEnded,
		})
	}
	return in
}

func (g *GestureRecognizer) press(x, y int, now time.Time) Input {
	in := Input{}
	if g.down {
		// a press without a release: end the old touch first
		in = g.release(g.lastX, g.lastY, now)
	}
	g.down = true
	g.suppressed = false
	g.panning = false
	g.pressing = false
	g.startX, g.startY = x, y
	g.lastX, g.lastY = x, y
	g.downAt = now
	in.Touches = append(in.Touches, touch(x, y, core.TouchBegin))
	return in
}

func (g *GestureRecognizer) move(x, y int) Input {
	if x == g.lastX && y == g.lastY {
		return Input{}
	}
	g.lastX, g.lastY = x, y
	in := Input{Touches: []TouchEvent{touch(x, y, core.TouchMove)}}
	if g.suppressed {
		return in
	}

	if g.pressing {
		g.pressing = false
		in.Gestures = append(in.Gestures, g.gesture(core.GesturePress, core.GestureCancelled))
	}
	switch {
	case g.panning:
		in.Gestures = append(in.Gestures, g.gesture(core.GesturePan, core.GestureChanged))
	case abs(x-g.startX) >= panThreshold || abs(y-g.startY) >= panThreshold:
		g.panning = true
		in.Gestures = append(in.Gestures, g.gesture(core.GesturePan, core.GestureBegan))
	}
	return in
}

func (g *GestureRecognizer) release(x, y int, now time.Time) Input {
	g.down = false
	g.lastX, g.lastY = x, y
	in := Input{Touches: []TouchEvent{touch(x, y, core.TouchEnd)}}
	if g.suppressed {
		g.suppressed = false
		return in
	}

	switch {
	case g.panning:
		g.panning = false
		in.Gestures = append(in.Gestures, g.gesture(core.GesturePan, core.GestureEnded))
	case g.pressing:
		g.pressing = false
		in.Gestures = append(in.Gestures, g.gesture(core.GesturePress, core.GestureEnded))
	case now.Sub(g.downAt) <= tapMaxDuration:
		in.Gestures = append(in.Gestures, g.gesture(core.GestureTap, core.GestureEnded))
		if !g.lastTapAt.IsZero() && now.Sub(g.lastTapAt) <= doubleTapWindow &&
			abs(x-g.lastTapX) <= panThreshold && abs(y-g.lastTapY) <= panThreshold {
			in.Gestures = append(in.Gestures, g.gesture(core.GestureDoubleTap, core.GestureEnded))
			g.lastTapAt = time.Time{}
		} else {
			g.lastTapAt, g.lastTapX, g.lastTapY = now, x, y
		}
	}
	return in
}

func (g *GestureRecognizer) pinch(x, y int, delta float64, now time.Time) Input {
	state := core.GestureChanged
	if !g.pinching {
		g.pinching = true
		g.pinchScale = 1
		state = core.GestureBegan
	}
	g.pinchScale += delta
	if g.pinchScale < pinchStep {
		g.pinchScale = pinchStep
	}
	g.pinchX, g.pinchY, g.pinchAt = x, y, now
	return Input{Gestures: []GestureEvent{{
		Kind: core.GesturePinch, X1: float64(x), Y1: float64(y),
		X2: g.pinchScale, State: state,
	}}}
}

func (g *GestureRecognizer) gesture(kind core.GestureKind, state core.GestureState) GestureEvent {
	return GestureEvent{
		Kind:  kind,
		X1:    float64(g.startX),
		Y1:    float64(g.startY),
		X2:    float64(g.lastX),
		Y2:    float64(g.lastY),
		State: state,
	}
}

func touch(x, y int, phase core.TouchPhase) TouchEvent {
	return TouchEvent{ID: 0, X: float32(x), Y: float32(y), Phase: phase}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
