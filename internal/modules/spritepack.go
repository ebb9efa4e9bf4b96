package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

const packType = "ejoy2d.pack"

func init() {
	register(SpritePack, "Sprite packs: named pictures and animations", openSpritePack)
}

func openSpritePack(L *lua.LState, _ *registry.Env) *lua.LTable {
	L.NewTypeMetatable(packType)

	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		// new{pictures = {...}, animations = {...}}
		"new": func(L *lua.LState) int {
			desc := L.CheckTable(1)
			pack, err := render.NewPack(parsePictures(L, desc), parseAnimations(L, desc))
			if err != nil {
				raise(L, err)
			}
			L.Push(newUserData(L, packType, pack))
			return 1
		},
		"query": func(L *lua.LState) int {
			pack := checkPack(L, 1)
			id, ok := pack.Query(L.CheckString(2))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(id))
			return 1
		},
		"export": func(L *lua.LState) int {
			pack := checkPack(L, 1)
			names := L.NewTable()
			for _, name := range pack.Names() {
				names.Append(lua.LString(name))
			}
			L.Push(names)
			return 1
		},
	})
}

func checkPack(L *lua.LState, n int) *render.Pack {
	return checkUserData[*render.Pack](L, n, packType)
}

func parsePictures(L *lua.LState, desc *lua.LTable) []render.Picture {
	list, ok := desc.RawGetString("pictures").(*lua.LTable)
	if !ok {
		return nil
	}
	var pictures []render.Picture
	list.ForEach(func(_, v lua.LValue) {
		t, ok := v.(*lua.LTable)
		if !ok {
			L.RaiseError("spritepack: picture entry is not a table")
		}
		pic := render.Picture{
			Name: strField(t, "name"),
			Tex:  intField(t, "tex", render.NoTexture),
			W:    intField(t, "w", 1),
			H:    intField(t, "h", 1),
		}
		if src, ok := t.RawGetString("src").(*lua.LTable); ok {
			pic.Src = tableRect(L, src)
		} else {
			pic.Src = core.Rect{}
		}
		pictures = append(pictures, pic)
	})
	return pictures
}

func parseAnimations(L *lua.LState, desc *lua.LTable) []render.Animation {
	list, ok := desc.RawGetString("animations").(*lua.LTable)
	if !ok {
		return nil
	}
	var animations []render.Animation
	list.ForEach(func(_, v lua.LValue) {
		t, ok := v.(*lua.LTable)
		if !ok {
			L.RaiseError("spritepack: animation entry is not a table")
		}
		anim := render.Animation{Name: strField(t, "name")}
		if frames, ok := t.RawGetString("frames").(*lua.LTable); ok {
			for i := 1; i <= frames.Len(); i++ {
				f, ok := frames.RawGetInt(i).(lua.LNumber)
				if !ok {
					L.RaiseError("spritepack: animation %q frame %d is not a number", anim.Name, i)
				}
				anim.Frames = append(anim.Frames, int(f))
			}
		}
		animations = append(animations, anim)
	})
	return animations
}
