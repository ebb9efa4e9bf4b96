package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

const bufferType = "ejoy2d.renderbuffer"

func init() {
	register(RenderBuffer, "Prebuilt sprite batches drawn in one call", openRenderBuffer)
}

func openRenderBuffer(L *lua.LState, env *registry.Env) *lua.LTable {
	check := func(L *lua.LState) *render.Buffer {
		return checkUserData[*render.Buffer](L, 1, bufferType)
	}
	funcs := map[string]lua.LGFunction{
		"new": func(L *lua.LState) int {
			L.Push(newUserData(L, bufferType, render.NewBuffer()))
			return 1
		},
		// add(rb, sprite, [x], [y]) returns false for sprites that can't be buffered.
		"add": func(L *lua.LState) int {
			rb := check(L)
			spr := checkSprite(L, 2)
			L.Push(lua.LBool(rb.Add(spr, float64(L.OptNumber(3, 0)), float64(L.OptNumber(4, 0)))))
			return 1
		},
		"draw": func(L *lua.LState) int {
			rb := check(L)
			if err := rb.Draw(env.Render.Shader, L.OptInt(2, 0), L.OptInt(3, 0)); err != nil {
				raise(L, err)
			}
			return 0
		},
		"clear": func(L *lua.LState) int {
			check(L).Clear()
			return 0
		},
		"count": func(L *lua.LState) int {
			L.Push(lua.LNumber(check(L).Len()))
			return 1
		},
	}

	mt := L.NewTypeMetatable(bufferType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), funcs))
	return L.SetFuncs(L.NewTable(), funcs)
}
