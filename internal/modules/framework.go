package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/registry"
)

func init() {
	register(Framework, "Lifecycle callback injection", openFramework)
}

func openFramework(L *lua.LState, env *registry.Env) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"inject": func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			if env.Inject == nil {
				L.RaiseError("inject is not available")
			}
			if err := env.Inject(L, tbl); err != nil {
				raise(L, err)
			}
			return 0
		},
	})
}
