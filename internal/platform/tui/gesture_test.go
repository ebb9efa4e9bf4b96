package tui

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/luaframe/internal/core"
)

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func leftPress(x, y int) tea.MouseMsg {
	return mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft)
}

func leftRelease(x, y int) tea.MouseMsg {
	return mouse(x, y, tea.MouseActionRelease, tea.MouseButtonNone)
}

func leftMotion(x, y int) tea.MouseMsg {
	return mouse(x, y, tea.MouseActionMotion, tea.MouseButtonLeft)
}

func gestureKinds(in Input) []core.GestureKind {
	kinds := make([]core.GestureKind, len(in.Gestures))
	for i, g := range in.Gestures {
		kinds[i] = g.Kind
	}
	return kinds
}

func sameKinds(a, b []core.GestureKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGestureTapAndDoubleTap(t *testing.T) {
	g := NewGestureRecognizer()
	t0 := time.Unix(0, 0)

	in := g.Mouse(leftPress(5, 5), t0)
	if len(in.Touches) != 1 || in.Touches[0].Phase != core.TouchBegin || len(in.Gestures) != 0 {
		t.Fatalf("press = %+v", in)
	}

	in = g.Mouse(leftRelease(5, 5), t0.Add(100*time.Millisecond))
	if len(in.Touches) != 1 || in.Touches[0].Phase != core.TouchEnd {
		t.Fatalf("release touches = %+v", in.Touches)
	}
	if !sameKinds(gestureKinds(in), []core.GestureKind{core.GestureTap}) {
		t.Fatalf("first release gestures = %v, expected tap", gestureKinds(in))
	}

	g.Mouse(leftPress(5, 5), t0.Add(200*time.Millisecond))
	in = g.Mouse(leftRelease(5, 5), t0.Add(300*time.Millisecond))
	want := []core.GestureKind{core.GestureTap, core.GestureDoubleTap}
	if !sameKinds(gestureKinds(in), want) {
		t.Errorf("second release gestures = %v, expected %v", gestureKinds(in), want)
	}

	// a third tap starts a new pair
	g.Mouse(leftPress(5, 5), t0.Add(400*time.Millisecond))
	in = g.Mouse(leftRelease(5, 5), t0.Add(450*time.Millisecond))
	if !sameKinds(gestureKinds(in), []core.GestureKind{core.GestureTap}) {
		t.Errorf("third release gestures = %v, expected tap only", gestureKinds(in))
	}
}

func TestGestureSlowReleaseIsNotTap(t *testing.T) {
	g := NewGestureRecognizer()
	t0 := time.Unix(0, 0)

	g.Mouse(leftPress(1, 1), t0)
	in := g.Mouse(leftRelease(1, 1), t0.Add(400*time.Millisecond))
	if len(in.Gestures) != 0 {
		t.Errorf("slow release produced %v", gestureKinds(in))
	}
}

func TestGesturePan(t *testing.T) {
	g := NewGestureRecognizer()
	t0 := time.Unix(0, 0)

	g.Mouse(leftPress(1, 1), t0)
	in := g.Mouse(leftMotion(3, 1), t0)
	if len(in.Touches) != 1 || in.Touches[0].Phase != core.TouchMove {
		t.Fatalf("motion touches = %+v", in.Touches)
	}
	if len(in.Gestures) != 1 || in.Gestures[0].Kind != core.GesturePan || in.Gestures[0].State != core.GestureBegan {
		t.Fatalf("first motion gestures = %+v", in.Gestures)
	}

	// motion within the same cell is dropped
	if in := g.Mouse(leftMotion(3, 1), t0); len(in.Touches) != 0 {
		t.Errorf("repeated motion produced %+v", in)
	}

	in = g.Mouse(leftMotion(4, 2), t0)
	if in.Gestures[0].State != core.GestureChanged {
		t.Errorf("second motion state = %v, expected changed", in.Gestures[0].State)
	}

	in = g.Mouse(leftRelease(4, 2), t0.Add(50*time.Millisecond))
	if len(in.Gestures) != 1 {
		t.Fatalf("release gestures = %+v", in.Gestures)
	}
	end := in.Gestures[0]
	if end.Kind != core.GesturePan || end.State != core.GestureEnded {
		t.Errorf("release gesture = %+v, expected pan ended", end)
	}
	if end.X1 != 1 || end.Y1 != 1 || end.X2 != 4 || end.Y2 != 2 {
		t.Errorf("pan points = (%v,%v)-(%v,%v)", end.X1, end.Y1, end.X2, end.Y2)
	}
}

func TestGestureLongPress(t *testing.T) {
	g := NewGestureRecognizer()
	t0 := time.Unix(0, 0)

	g.Mouse(leftPress(2, 2), t0)
	if in := g.Tick(t0.Add(100 * time.Millisecond)); len(in.Gestures) != 0 {
		t.Fatalf("early tick produced %+v", in.Gestures)
	}

	in := g.Tick(t0.Add(600 * time.Millisecond))
	if len(in.Gestures) != 1 || in.Gestures[0].Kind != core.GesturePress || in.Gestures[0].State != core.GestureBegan {
		t.Fatalf("press tick = %+v", in.Gestures)
	}
	if in := g.Tick(t0.Add(700 * time.Millisecond)); len(in.Gestures) != 0 {
		t.Errorf("press fired twice: %+v", in.Gestures)
	}

	in = g.Mouse(leftRelease(2, 2), t0.Add(800*time.Millisecond))
	if len(in.Gestures) != 1 || in.Gestures[0].Kind != core.GesturePress || in.Gestures[0].State != core.GestureEnded {
		t.Errorf("release after press = %+v", in.Gestures)
	}
}

func TestGestureSuppress(t *testing.T) {
	g := NewGestureRecognizer()
	t0 := time.Unix(0, 0)

	g.Mouse(leftPress(2, 2), t0)
	g.Suppress()
	in := g.Mouse(leftMotion(6, 2), t0)
	if len(in.Touches) != 1 || len(in.Gestures) != 0 {
		t.Errorf("suppressed motion = %+v", in)
	}
	in = g.Mouse(leftRelease(6, 2), t0.Add(10*time.Millisecond))
	if len(in.Touches) != 1 || len(in.Gestures) != 0 {
		t.Errorf("suppressed release = %+v", in)
	}

	// the next touch recognizes again
	g.Mouse(leftPress(2, 2), t0.Add(time.Second))
	in = g.Mouse(leftRelease(2, 2), t0.Add(time.Second+10*time.Millisecond))
	if !sameKinds(gestureKinds(in), []core.GestureKind{core.GestureTap}) {
		t.Errorf("after suppression = %v, expected tap", gestureKinds(in))
	}
}

func TestGesturePinch(t *testing.T) {
	g := NewGestureRecognizer()
	t0 := time.Unix(0, 0)

	in := g.Mouse(mouse(10, 4, tea.MouseActionPress, tea.MouseButtonWheelUp), t0)
	if len(in.Touches) != 0 || len(in.Gestures) != 1 {
		t.Fatalf("wheel = %+v", in)
	}
	first := in.Gestures[0]
	if first.Kind != core.GesturePinch || first.State != core.GestureBegan || math.Abs(first.X2-1.1) > 1e-9 {
		t.Errorf("first pinch = %+v", first)
	}

	in = g.Mouse(mouse(10, 4, tea.MouseActionPress, tea.MouseButtonWheelUp), t0.Add(50*time.Millisecond))
	if in.Gestures[0].State != core.GestureChanged || math.Abs(in.Gestures[0].X2-1.2) > 1e-9 {
		t.Errorf("second pinch = %+v", in.Gestures[0])
	}

	in = g.Tick(t0.Add(500 * time.Millisecond))
	if len(in.Gestures) != 1 || in.Gestures[0].State != core.GestureEnded {
		t.Fatalf("idle tick = %+v", in.Gestures)
	}

	// scale never drops below one step
	for i := 0; i < 20; i++ {
		in = g.Mouse(mouse(0, 0, tea.MouseActionPress, tea.MouseButtonWheelDown), t0.Add(time.Second))
	}
	if in.Gestures[0].X2 < pinchStep-1e-9 {
		t.Errorf("pinch scale = %v, expected >= %v", in.Gestures[0].X2, pinchStep)
	}
}
