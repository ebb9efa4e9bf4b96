package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrNotInjected is returned by Start when the script never called inject.
	ErrNotInjected = errors.New("game: callbacks not injected")

	// ErrNotRunning is returned by lifecycle calls made before Start.
	ErrNotRunning = errors.New("game: session is not running")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("game: session already started")

	// ErrFaulted is returned by every call after a script fault was propagated.
	ErrFaulted = errors.New("game: session faulted")

	// ErrClosed is returned by calls on a closed session.
	ErrClosed = errors.New("game: session closed")
)

// Error kinds reported to the script error handler and the fault strategy.
const (
	KindRun       = "LUA_ERRRUN"
	KindSyntax    = "LUA_ERRSYNTAX"
	KindFile      = "LUA_ERRFILE"
	KindErr       = "LUA_ERRERR"
	KindMem       = "LUA_ERRMEM"
	KindUnknown   = "UnknownError"
	KindBootstrap = "BOOTSTRAP"
)

// ScriptError describes a script failure during a lifecycle call.
type ScriptError struct {
	Kind    string // one of the Kind constants; prefixed with "!" when the error handler itself failed
	Op      string // lifecycle operation, e.g. "update" or "touch"
	Message string // error message with traceback
	Cause   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("game: %s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// newScriptError classifies an error returned by a protected call.
func newScriptError(op string, err error) *ScriptError {
	se := &ScriptError{Kind: KindUnknown, Op: op, Message: err.Error(), Cause: err}

	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return se
	}
	switch apiErr.Type {
	case lua.ApiErrorRun:
		se.Kind = KindRun
	case lua.ApiErrorSyntax:
		se.Kind = KindSyntax
	case lua.ApiErrorFile:
		se.Kind = KindFile
	case lua.ApiErrorError:
		se.Kind = KindErr
	case lua.ApiErrorPanic:
		// Go panics inside the VM (out of memory, nil dereference) are the
		// closest thing to a memory error the runtime reports.
		se.Kind = KindMem
	}
	return se
}

// FaultFunc decides what happens once a script fault has been reported.
// A FaultFunc that returns lets the failing call return the *ScriptError.
type FaultFunc func(err *ScriptError)

// AbortFault logs the fault and terminates the process.
func AbortFault(logger *log.Logger) FaultFunc {
	return func(err *ScriptError) {
		logger.Fatal("script fault", "op", err.Op, "kind", err.Kind, "err", err.Message)
	}
}

// PropagateFault returns without terminating, so the failing call returns
// the error and the session moves to the Faulted state.
func PropagateFault(*ScriptError) {}
