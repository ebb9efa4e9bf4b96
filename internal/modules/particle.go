package modules

import (
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/registry"
	"github.com/vovakirdan/luaframe/internal/render"
)

const particleType = "ejoy2d.particle"

func init() {
	register(Particle, "Particle emitters", openParticle)
}

func openParticle(L *lua.LState, env *registry.Env) *lua.LTable {
	check := func(L *lua.LState) *render.ParticleSystem {
		return checkUserData[*render.ParticleSystem](L, 1, particleType)
	}
	funcs := map[string]lua.LGFunction{
		"new": func(L *lua.LState) int {
			cfg := render.DefaultParticleConfig()
			seed := env.Seed
			if t, ok := L.Get(1).(*lua.LTable); ok {
				cfg = particleConfig(L, t, cfg)
				seed = uint64(intField(t, "seed", int(seed)))
			}
			L.Push(newUserData(L, particleType, render.NewParticleSystem(cfg, seed)))
			return 1
		},
		"reset": func(L *lua.LState) int {
			check(L).Reset()
			return 0
		},
		// update(ps, dt, x, y) reports whether the emitter is still active.
		"update": func(L *lua.LState) int {
			ps := check(L)
			ps.Update(float64(L.CheckNumber(2)), float64(L.OptNumber(3, 0)), float64(L.OptNumber(4, 0)))
			L.Push(lua.LBool(ps.Active()))
			return 1
		},
		"count": func(L *lua.LState) int {
			L.Push(lua.LNumber(check(L).Count()))
			return 1
		},
		"draw": func(L *lua.LState) int {
			if err := check(L).Draw(env.Render.Shader); err != nil {
				raise(L, err)
			}
			return 0
		},
	}

	mt := L.NewTypeMetatable(particleType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), funcs))
	return L.SetFuncs(L.NewTable(), funcs)
}

func particleConfig(L *lua.LState, t *lua.LTable, cfg render.ParticleConfig) render.ParticleConfig {
	cfg.MaxParticles = intField(t, "max", cfg.MaxParticles)
	cfg.EmissionRate = numField(t, "rate", cfg.EmissionRate)
	cfg.Life = numField(t, "life", cfg.Life)
	cfg.LifeVar = numField(t, "life_var", cfg.LifeVar)
	cfg.Speed = numField(t, "speed", cfg.Speed)
	cfg.SpeedVar = numField(t, "speed_var", cfg.SpeedVar)
	cfg.Angle = numField(t, "angle", cfg.Angle)
	cfg.AngleVar = numField(t, "angle_var", cfg.AngleVar)
	cfg.GravityX = numField(t, "gravity_x", cfg.GravityX)
	cfg.GravityY = numField(t, "gravity_y", cfg.GravityY)
	cfg.Duration = numField(t, "duration", cfg.Duration)
	if g := strField(t, "glyph"); g != "" {
		cfg.Glyph, _ = utf8.DecodeRuneInString(g)
	}
	cfg.StartColor = fieldColor(L, t, "start_color", cfg.StartColor)
	cfg.EndColor = fieldColor(L, t, "end_color", cfg.EndColor)
	return cfg
}

// fieldColor reads a color field through colorArg by pushing it onto the stack.
func fieldColor(L *lua.LState, t *lua.LTable, key string, def core.Color) core.Color {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return def
	}
	L.Push(v)
	c := colorArg(L, L.GetTop(), def)
	L.Pop(1)
	return c
}
