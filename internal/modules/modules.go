// Package modules implements the native capability modules a session
// installs into its scripting runtime. Each module registers itself with
// the registry in init().
package modules

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/image/colornames"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

// Require names of the built-in modules.
const (
	Shader       = "ejoy2d.shader.c"
	Framework    = "ejoy2d.framework"
	PPM          = "ejoy2d.ppm"
	SpritePack   = "ejoy2d.spritepack.c"
	Sprite       = "ejoy2d.sprite.c"
	RenderBuffer = "ejoy2d.renderbuffer"
	Matrix       = "ejoy2d.matrix.c"
	Particle     = "ejoy2d.particle.c"
	Geometry     = "ejoy2d.geometry.c"
)

// Builtin returns the built-in module names in installation order.
// The shader comes first: every other drawing module needs it initialized.
func Builtin() []string {
	return []string{
		Shader,
		Framework,
		PPM,
		SpritePack,
		Sprite,
		RenderBuffer,
		Matrix,
		Particle,
		Geometry,
	}
}

// module is the common Module implementation: a name, a title and a
// function building the exported table.
type module struct {
	name  string
	title string
	open  func(L *lua.LState, env *registry.Env) *lua.LTable
}

func (m *module) Name() string  { return m.name }
func (m *module) Title() string { return m.title }

func (m *module) Open(env *registry.Env) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(m.open(L, env))
		return 1
	}
}

func register(name, title string, open func(L *lua.LState, env *registry.Env) *lua.LTable) {
	registry.Register(name, func() registry.Module {
		return &module{name: name, title: title, open: open}
	})
}

// raise converts a Go error into a script error.
func raise(L *lua.LState, err error) {
	L.RaiseError("%s", err.Error())
}

// colorArg reads an optional color argument: an 0xAARRGGBB number or an
// SVG color name. def is returned when the argument is nil or absent.
func colorArg(L *lua.LState, n int, def core.Color) core.Color {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		return core.ARGB(uint32(int64(v)))
	case lua.LString:
		rgba, ok := colornames.Map[strings.ToLower(string(v))]
		if !ok {
			L.ArgError(n, "unknown color "+string(v))
		}
		return core.NearestColor(rgba)
	case *lua.LNilType:
		return def
	default:
		L.TypeError(n, lua.LTNumber)
	}
	return def
}

// rectArg reads a {x, y, w, h} array table.
func rectArg(L *lua.LState, n int) core.Rect {
	return tableRect(L, L.CheckTable(n))
}

func tableRect(L *lua.LState, t *lua.LTable) core.Rect {
	get := func(i int) int {
		v, ok := t.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.RaiseError("rect field %d is not a number", i)
		}
		return int(v)
	}
	return core.NewRect(get(1), get(2), get(3), get(4))
}

func intField(t *lua.LTable, key string, def int) int {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(v)
	}
	return def
}

func numField(t *lua.LTable, key string, def float64) float64 {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return def
}

func strField(t *lua.LTable, key string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

// newUserData wraps value in a userdata carrying the metatable registered under typ.
func newUserData(L *lua.LState, typ string, value any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = value
	L.SetMetatable(ud, L.GetTypeMetatable(typ))
	return ud
}

// checkUserData returns argument n as a T, raising a type error otherwise.
func checkUserData[T any](L *lua.LState, n int, typ string) T {
	ud := L.CheckUserData(n)
	v, ok := ud.Value.(T)
	if !ok {
		L.ArgError(n, typ+" expected")
	}
	return v
}

func checkSprite(L *lua.LState, n int) *render.Sprite {
	return checkUserData[*render.Sprite](L, n, spriteType)
}
