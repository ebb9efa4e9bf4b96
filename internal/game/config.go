package game

import (
	"io/fs"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
)

// Default values applied by New.
const (
	DefaultFrameRate = 30
	DefaultOS        = "TERMINAL"
	DefaultWidth     = 80
	DefaultHeight    = 24
)

// Config configures a session.
type Config struct {
	// LogicFPS and ViewportFPS are the fixed-step rates. Zero means DefaultFrameRate.
	LogicFPS    int
	ViewportFPS int

	// OS is exposed to scripts as the OS global.
	OS string

	// Version, when non-zero, is exposed to scripts as _EJOY_VER_.
	Version int

	// Screen is the render target. A DefaultWidth x DefaultHeight screen is created if nil.
	Screen *core.Screen

	// Assets resolves image paths passed to the ppm module.
	Assets fs.FS

	// Seed seeds randomized modules.
	Seed uint64

	// Fault is called on every script fault. Defaults to AbortFault(Logger).
	Fault FaultFunc

	Logger *log.Logger

	// Runtime, if set, is bootstrapped instead of a fresh state. It must have
	// the standard libraries open and must not host another session. The
	// session owns it once New succeeds.
	Runtime *lua.LState

	// OnRelease, if set, is called as each part of the session is torn down:
	// "lua", then "label", "texture" and "shader".
	OnRelease func(part string)
}

func (c Config) withDefaults() Config {
	if c.LogicFPS <= 0 {
		c.LogicFPS = DefaultFrameRate
	}
	if c.ViewportFPS <= 0 {
		c.ViewportFPS = DefaultFrameRate
	}
	if c.OS == "" {
		c.OS = DefaultOS
	}
	if c.Screen == nil {
		c.Screen = core.NewScreen(DefaultWidth, DefaultHeight)
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Fault == nil {
		c.Fault = AbortFault(c.Logger)
	}
	return c
}
