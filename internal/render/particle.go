package render

import (
	"math"
	"math/rand/v2"

	"github.com/vovakirdan/luaframe/internal/core"
)

// ParticleConfig describes an emitter.
type ParticleConfig struct {
	MaxParticles int
	EmissionRate float64 // particles per second
	Life         float64 // seconds
	LifeVar      float64
	Speed        float64 // cells per second
	SpeedVar     float64
	Angle        float64 // degrees, 0 points right
	AngleVar     float64
	GravityX     float64
	GravityY     float64
	Glyph        rune
	StartColor   core.Color
	EndColor     core.Color
	Duration     float64 // seconds of emission; <= 0 emits forever
}

// DefaultParticleConfig returns a small upward fountain.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		MaxParticles: 64,
		EmissionRate: 20,
		Life:         1.5,
		LifeVar:      0.5,
		Speed:        8,
		SpeedVar:     2,
		Angle:        -90,
		AngleVar:     30,
		GravityY:     6,
		Glyph:        '*',
		StartColor:   core.ColorYellow,
		EndColor:     core.ColorRed,
	}
}

type particle struct {
	x, y   float64
	vx, vy float64
	life   float64
	total  float64
}

// ParticleSystem is a CPU particle emitter drawn as single-cell quads.
type ParticleSystem struct {
	cfg       ParticleConfig
	rng       *rand.Rand
	particles []particle
	elapsed   float64
	pending   float64
	active    bool
}

// NewParticleSystem creates an emitter. seed makes the emission reproducible.
func NewParticleSystem(cfg ParticleConfig, seed uint64) *ParticleSystem {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = DefaultParticleConfig().MaxParticles
	}
	return &ParticleSystem{
		cfg:       cfg,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		particles: make([]particle, 0, cfg.MaxParticles),
		active:    true,
	}
}

// Reset removes all particles and restarts emission.
func (ps *ParticleSystem) Reset() {
	ps.particles = ps.particles[:0]
	ps.elapsed = 0
	ps.pending = 0
	ps.active = true
}

// Count returns the number of live particles.
func (ps *ParticleSystem) Count() int {
	return len(ps.particles)
}

// Active reports whether the emitter is still emitting.
func (ps *ParticleSystem) Active() bool {
	return ps.active
}

// Update advances the simulation by dt seconds with the emitter at (x, y).
func (ps *ParticleSystem) Update(dt, x, y float64) {
	if dt <= 0 {
		return
	}

	live := ps.particles[:0]
	for _, p := range ps.particles {
		p.life -= dt
		if p.life <= 0 {
			continue
		}
		p.vx += ps.cfg.GravityX * dt
		p.vy += ps.cfg.GravityY * dt
		p.x += p.vx * dt
		p.y += p.vy * dt
		live = append(live, p)
	}
	ps.particles = live

	if !ps.active {
		return
	}
	ps.elapsed += dt
	if ps.cfg.Duration > 0 && ps.elapsed >= ps.cfg.Duration {
		ps.active = false
	}

	ps.pending += ps.cfg.EmissionRate * dt
	for ps.pending >= 1 && len(ps.particles) < ps.cfg.MaxParticles {
		ps.pending--
		ps.emit(x, y)
	}
	if len(ps.particles) >= ps.cfg.MaxParticles {
		ps.pending = 0
	}
}

func (ps *ParticleSystem) emit(x, y float64) {
	angle := (ps.cfg.Angle + ps.vary(ps.cfg.AngleVar)) * math.Pi / 180
	speed := ps.cfg.Speed + ps.vary(ps.cfg.SpeedVar)
	life := math.Max(ps.cfg.Life+ps.vary(ps.cfg.LifeVar), 0.01)
	ps.particles = append(ps.particles, particle{
		x:     x,
		y:     y,
		vx:    math.Cos(angle) * speed,
		vy:    math.Sin(angle) * speed,
		life:  life,
		total: life,
	})
}

// vary returns a uniform value in [-v, v].
func (ps *ParticleSystem) vary(v float64) float64 {
	if v == 0 {
		return 0
	}
	return (ps.rng.Float64()*2 - 1) * v
}

// Draw submits every live particle to the shader as a one-cell quad.
func (ps *ParticleSystem) Draw(sh *Shader) error {
	glyph := ps.cfg.Glyph
	if glyph == 0 {
		glyph = '*'
	}
	for _, p := range ps.particles {
		c := ps.cfg.StartColor
		if p.life < p.total/2 {
			c = ps.cfg.EndColor
		}
		dst := core.NewRect(int(math.Round(p.x)), int(math.Round(p.y)), 1, 1)
		if err := sh.Draw(Quad(dst, glyph, c)); err != nil {
			return err
		}
	}
	return nil
}
