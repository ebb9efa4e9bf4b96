package core

// TouchPhase is the phase of a touch event as reported by the host.
// Scripts receive the phase shifted by one (TouchBegin arrives as 1).
type TouchPhase int

const (
	TouchBegin TouchPhase = iota
	TouchEnd
	TouchMove
	TouchCancel
)

// String returns a human-readable name for the phase.
func (p TouchPhase) String() string {
	switch p {
	case TouchBegin:
		return "begin"
	case TouchEnd:
		return "end"
	case TouchMove:
		return "move"
	case TouchCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// GestureKind identifies a recognized gesture.
type GestureKind int

const (
	GesturePan GestureKind = iota + 1
	GestureTap
	GesturePinch
	GesturePress
	GestureDoubleTap
)

// String returns a human-readable name for the gesture.
func (k GestureKind) String() string {
	switch k {
	case GesturePan:
		return "pan"
	case GestureTap:
		return "tap"
	case GesturePinch:
		return "pinch"
	case GesturePress:
		return "press"
	case GestureDoubleTap:
		return "doubletap"
	default:
		return "unknown"
	}
}

// GestureState is the recognizer state attached to a gesture event.
type GestureState int

const (
	GesturePossible GestureState = iota
	GestureBegan
	GestureChanged
	GestureEnded
	GestureCancelled
	GestureFailed
)

// Message is a host-to-script notification. State and Data are optional
// and reach the script as nil when unset.
type Message struct {
	ID     int
	State  *string
	Data   *string
	Number float64
}

// NewMessage creates a message carrying both optional strings.
func NewMessage(id int, state, data string, n float64) Message {
	return Message{ID: id, State: &state, Data: &data, Number: n}
}
