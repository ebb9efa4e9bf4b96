package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

const spriteType = "ejoy2d.sprite"

func init() {
	register(Sprite, "Sprite instances and text labels", openSprite)
}

func openSprite(L *lua.LState, env *registry.Env) *lua.LTable {
	mt := L.NewTypeMetatable(spriteType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), spriteMethods(env.Render)))

	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		// new(pack, id|name)
		"new": func(L *lua.LState) int {
			pack := checkPack(L, 1)
			var id int
			switch v := L.Get(2).(type) {
			case lua.LString:
				var ok bool
				if id, ok = pack.Query(string(v)); !ok {
					L.ArgError(2, "no sprite named "+string(v))
				}
			default:
				id = L.CheckInt(2)
			}
			spr, err := render.NewSprite(pack, id)
			if err != nil {
				raise(L, err)
			}
			L.Push(newUserData(L, spriteType, spr))
			return 1
		},
		"label": func(L *lua.LState) int {
			spr := render.NewLabel(L.CheckString(1), colorArg(L, 2, core.ColorDefault))
			L.Push(newUserData(L, spriteType, spr))
			return 1
		},
	})
}

func spriteMethods(ctx *render.Context) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"draw": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			if err := spr.Draw(ctx, float64(L.OptNumber(2, 0)), float64(L.OptNumber(3, 0))); err != nil {
				raise(L, err)
			}
			return 0
		},
		// ps(x, y, [scale]) places the sprite.
		"ps": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			s := float64(L.OptNumber(4, 1))
			spr.Matrix = render.Identity().Scale(s, s).Trans(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
			return 0
		},
		"frame": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			if L.GetTop() >= 2 {
				spr.SetFrame(L.CheckInt(2))
				return 0
			}
			L.Push(lua.LNumber(spr.Frame))
			return 1
		},
		"frames": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkSprite(L, 1).FrameCount()))
			return 1
		},
		"visible": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			if L.GetTop() >= 2 {
				spr.Visible = L.ToBool(2)
				return 0
			}
			L.Push(lua.LBool(spr.Visible))
			return 1
		},
		"color": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			spr.Color = colorArg(L, 2, core.ColorDefault)
			return 0
		},
		"text": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			if !spr.IsLabel {
				L.RaiseError("sprite is not a label")
			}
			if L.GetTop() >= 2 {
				spr.Text = L.CheckString(2)
				return 0
			}
			L.Push(lua.LString(spr.Text))
			return 1
		},
		"matrix": func(L *lua.LState) int {
			spr := checkSprite(L, 1)
			if L.GetTop() >= 2 {
				spr.Matrix = *checkMatrix(L, 2)
				return 0
			}
			m := spr.Matrix
			L.Push(newUserData(L, matrixType, &m))
			return 1
		},
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(checkSprite(L, 1).Name()))
			return 1
		},
	}
}
