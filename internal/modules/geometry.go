package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

func init() {
	register(Geometry, "Untextured lines, boxes and polygons", openGeometry)
}

func openGeometry(L *lua.LState, env *registry.Env) *lua.LTable {
	sh := env.Render.Shader
	draw := func(L *lua.LState, p render.Primitive) {
		if err := sh.Draw(p); err != nil {
			raise(L, err)
		}
	}
	rect := func(L *lua.LState) core.Rect {
		return core.NewRect(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4))
	}

	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"line": func(L *lua.LState) int {
			draw(L, render.Line(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4),
				render.DefaultGlyph, colorArg(L, 5, core.ColorDefault)))
			return 0
		},
		"box": func(L *lua.LState) int {
			draw(L, render.Quad(rect(L), render.DefaultGlyph, colorArg(L, 5, core.ColorDefault)))
			return 0
		},
		"frame": func(L *lua.LState) int {
			draw(L, render.Frame(rect(L), colorArg(L, 5, core.ColorDefault)))
			return 0
		},
		// polygon({x1, y1, x2, y2, ...}, [color]) draws a closed outline.
		"polygon": func(L *lua.LState) int {
			pts := L.CheckTable(1)
			c := colorArg(L, 2, core.ColorDefault)
			n := pts.Len() / 2
			if n < 2 {
				L.ArgError(1, "polygon needs at least 2 points")
			}
			coord := func(i int) int {
				v, ok := pts.RawGetInt(i).(lua.LNumber)
				if !ok {
					L.ArgError(1, "polygon coordinates must be numbers")
				}
				return int(v)
			}
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				draw(L, render.Line(coord(2*i+1), coord(2*i+2), coord(2*j+1), coord(2*j+2),
					render.DefaultGlyph, c))
			}
			return 0
		},
	})
}
