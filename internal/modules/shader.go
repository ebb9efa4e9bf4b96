package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

func init() {
	register(Shader, "Shader batching, blend state and draw statistics", openShader)
}

func openShader(L *lua.LState, env *registry.Env) *lua.LTable {
	sh := env.Render.Shader
	check := func(L *lua.LState, err error) {
		if err != nil {
			raise(L, err)
		}
	}

	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"clear": func(L *lua.LState) int {
			check(L, sh.Clear(colorArg(L, 1, core.ColorDefault)))
			return 0
		},
		"blend": func(L *lua.LState) int {
			mode := render.BlendNormal
			if L.OptInt(1, 0) != 0 {
				mode = render.BlendAdditive
			}
			check(L, sh.Blend(mode))
			return 0
		},
		"setcolor": func(L *lua.LState) int {
			check(L, sh.SetColor(colorArg(L, 1, core.ColorDefault)))
			return 0
		},
		// draw(tex, {x, y, w, h}, [color], [src]). tex < 0 draws a solid quad.
		"draw": func(L *lua.LState) int {
			tex := L.CheckInt(1)
			dst := rectArg(L, 2)
			c := colorArg(L, 3, core.ColorDefault)
			var p render.Primitive
			if tex < 0 {
				p = render.Quad(dst, render.DefaultGlyph, c)
			} else {
				var src core.Rect
				if L.Get(4) != lua.LNil {
					src = rectArg(L, 4)
				}
				p = render.TexturedQuad(dst, tex, src)
				p.Color = c
			}
			check(L, sh.Draw(p))
			return 0
		},
		"load": func(L *lua.LState) int {
			check(L, sh.Load(L.CheckInt(1), L.OptString(2, ""), L.OptString(3, "")))
			return 0
		},
		"use": func(L *lua.LState) int {
			check(L, sh.Use(L.CheckInt(1)))
			return 0
		},
		"flush": func(L *lua.LState) int {
			check(L, sh.Flush())
			return 0
		},
		"drawcall": func(L *lua.LState) int {
			L.Push(lua.LNumber(sh.DrawCalls()))
			return 1
		},
		"objectcount": func(L *lua.LState) int {
			L.Push(lua.LNumber(sh.Objects()))
			return 1
		},
		"size": func(L *lua.LState) int {
			L.Push(lua.LNumber(env.Render.Screen.Width()))
			L.Push(lua.LNumber(env.Render.Screen.Height()))
			return 2
		},
	})
}
