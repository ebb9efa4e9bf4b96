package modules

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

const matrixType = "ejoy2d.matrix"

func init() {
	register(Matrix, "Fixed-point 2D affine matrices", openMatrix)
}

func checkMatrix(L *lua.LState, n int) *render.Matrix {
	return checkUserData[*render.Matrix](L, n, matrixType)
}

func openMatrix(L *lua.LState, _ *registry.Env) *lua.LTable {
	funcs := map[string]lua.LGFunction{
		// new([src]) copies src, a matrix or a 6-element array, or returns identity.
		"new": func(L *lua.LState) int {
			m := render.Identity()
			switch v := L.Get(1).(type) {
			case *lua.LUserData:
				m = *checkMatrix(L, 1)
			case *lua.LTable:
				for i := range m {
					n, ok := v.RawGetInt(i + 1).(lua.LNumber)
					if !ok {
						L.ArgError(1, "matrix array needs 6 numbers")
					}
					m[i] = int32(n)
				}
			}
			L.Push(newUserData(L, matrixType, &m))
			return 1
		},
		"identity": func(L *lua.LState) int {
			*checkMatrix(L, 1) = render.Identity()
			return 0
		},
		"trans": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			*m = m.Trans(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
			return 0
		},
		"scale": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			sx := float64(L.CheckNumber(2))
			sy := float64(L.OptNumber(3, lua.LNumber(sx)))
			*m = m.Scale(sx, sy)
			return 0
		},
		"rot": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			*m = m.Rot(float64(L.CheckNumber(2)))
			return 0
		},
		// mul(m, a, b) stores a*b into m.
		"mul": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			*m = render.Mul(*checkMatrix(L, 2), *checkMatrix(L, 3))
			return 0
		},
		// inverse(m, src) stores the inverse of src into m and reports success.
		"inverse": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			inv, ok := checkMatrix(L, 2).Inverse()
			if ok {
				*m = inv
			}
			L.Push(lua.LBool(ok))
			return 1
		},
		"export": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			for _, v := range m {
				L.Push(lua.LNumber(v))
			}
			return len(m)
		},
		"import": func(L *lua.LState) int {
			m := checkMatrix(L, 1)
			for i := range m {
				m[i] = int32(L.CheckInt(i + 2))
			}
			return 0
		},
		"transform": func(L *lua.LState) int {
			x, y := checkMatrix(L, 1).Transform(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
			L.Push(lua.LNumber(x))
			L.Push(lua.LNumber(y))
			return 2
		},
	}

	mt := L.NewTypeMetatable(matrixType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), funcs))
	return L.SetFuncs(L.NewTable(), funcs)
}
