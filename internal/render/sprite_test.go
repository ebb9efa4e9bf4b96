package render

import (
	"math"
	"testing"

	"github.com/vovakirdan/luaframe/internal/core"
)

func testPack(t *testing.T) *Pack {
	t.Helper()
	pack, err := NewPack(
		[]Picture{
			{Name: "dot", Tex: NoTexture, W: 1, H: 1},
			{Name: "bar", Tex: NoTexture, W: 3, H: 1},
		},
		[]Animation{{Name: "blink", Frames: []int{0, 1}}},
	)
	if err != nil {
		t.Fatalf("NewPack() failed: %v", err)
	}
	return pack
}

func TestPackQuery(t *testing.T) {
	pack := testPack(t)

	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{"dot", 0, true},
		{"bar", 1, true},
		{"blink", 2, true},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		id, ok := pack.Query(tt.name)
		if ok != tt.ok || (ok && id != tt.id) {
			t.Errorf("Query(%q) = %d, %v; expected %d, %v", tt.name, id, ok, tt.id, tt.ok)
		}
	}
	if pack.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", pack.Len())
	}
}

func TestNewPackRejectsBadInput(t *testing.T) {
	if _, err := NewPack([]Picture{{Name: "a"}, {Name: "a"}}, nil); err == nil {
		t.Error("duplicate names should be rejected")
	}
	if _, err := NewPack([]Picture{{Name: "a"}}, []Animation{{Name: "b", Frames: []int{4}}}); err == nil {
		t.Error("animation with missing frame should be rejected")
	}
}

func TestSpriteFrames(t *testing.T) {
	pack := testPack(t)
	spr, err := NewSprite(pack, 2)
	if err != nil {
		t.Fatalf("NewSprite() failed: %v", err)
	}
	if spr.FrameCount() != 2 {
		t.Errorf("FrameCount() = %d, expected 2", spr.FrameCount())
	}

	spr.SetFrame(3)
	if spr.Frame != 1 {
		t.Errorf("SetFrame(3) -> %d, expected 1", spr.Frame)
	}
	spr.SetFrame(-1)
	if spr.Frame != 1 {
		t.Errorf("SetFrame(-1) -> %d, expected 1", spr.Frame)
	}

	p, ok := spr.Primitive(2, 0)
	if !ok || p.Dst.W != 3 {
		t.Errorf("Primitive() = %+v, %v; expected bar-sized quad", p, ok)
	}

	if _, err := NewSprite(pack, 9); err == nil {
		t.Error("NewSprite with out of range id should fail")
	}
}

func TestSpriteDraw(t *testing.T) {
	ctx := newTestContext(t, 8, 2)
	pack := testPack(t)
	spr, _ := NewSprite(pack, 1)
	spr.Color = core.ColorMagenta
	spr.Matrix = spr.Matrix.Trans(2, 1)

	if err := spr.Draw(ctx, 1, 0); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}
	label := NewLabel("ok", core.ColorWhite)
	if err := label.Draw(ctx, 0, 0); err != nil {
		t.Fatalf("label Draw() failed: %v", err)
	}
	hidden, _ := NewSprite(pack, 0)
	hidden.Visible = false
	_ = hidden.Draw(ctx, 0, 0)

	_ = ctx.EndFrame()
	if got := ctx.Screen.Row(1); got != "   ███  " {
		t.Errorf("Row(1) = %q", got)
	}
	if got := ctx.Screen.Row(0); got != "ok      " {
		t.Errorf("Row(0) = %q", got)
	}
	if label.Name() != "ok" || spr.Name() != "bar" {
		t.Errorf("Name() = %q/%q", label.Name(), spr.Name())
	}
}

func TestMatrix(t *testing.T) {
	m := Identity().Scale(2, 2).Trans(3, -1)
	x, y := m.Transform(1, 1)
	if x != 5 || y != 1 {
		t.Errorf("Transform(1, 1) = (%v, %v), expected (5, 1)", x, y)
	}

	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() reported singular matrix")
	}
	x, y = inv.Transform(5, 1)
	if math.Abs(x-1) > 0.01 || math.Abs(y-1) > 0.01 {
		t.Errorf("inverse Transform(5, 1) = (%v, %v), expected (1, 1)", x, y)
	}

	if got := Mul(m, inv); got != Identity() {
		t.Errorf("m * inverse = %v, expected identity", got)
	}

	if _, ok := (Matrix{}).Inverse(); ok {
		t.Error("zero matrix should be singular")
	}

	r := Identity().Rot(90)
	x, y = r.Transform(1, 0)
	if math.Abs(x) > 0.01 || math.Abs(y-1) > 0.01 {
		t.Errorf("Rot(90) Transform(1, 0) = (%v, %v), expected (0, 1)", x, y)
	}
}

func TestBufferSingleDrawCall(t *testing.T) {
	ctx := newTestContext(t, 10, 3)
	pack := testPack(t)
	buf := NewBuffer()

	for i := 0; i < 3; i++ {
		spr, _ := NewSprite(pack, 0)
		if !buf.Add(spr, float64(i), 0) {
			t.Fatalf("Add(%d) rejected", i)
		}
	}
	if buf.Add(NewLabel("x", core.ColorRed), 0, 0) {
		t.Error("labels should not be buffered")
	}

	ctx.BeginFrame()
	if err := buf.Draw(ctx.Shader, 0, 2); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}
	if ctx.Shader.DrawCalls() != 1 {
		t.Errorf("DrawCalls() = %d, expected 1", ctx.Shader.DrawCalls())
	}
	if got := ctx.Screen.Row(2); got != "███       " {
		t.Errorf("Row(2) = %q", got)
	}

	buf.Clear()
	if buf.Len() != 0 {
		t.Errorf("Len() = %d after Clear", buf.Len())
	}
}

func TestParticleSystem(t *testing.T) {
	cfg := DefaultParticleConfig()
	cfg.MaxParticles = 5
	cfg.EmissionRate = 10
	ps := NewParticleSystem(cfg, 1)

	ps.Update(0.25, 0, 0)
	if ps.Count() != 2 {
		t.Errorf("Count() = %d after 0.25s at 10/s, expected 2", ps.Count())
	}

	ps.Update(1, 0, 0)
	if ps.Count() > cfg.MaxParticles {
		t.Errorf("Count() = %d exceeds max %d", ps.Count(), cfg.MaxParticles)
	}

	ctx := newTestContext(t, 20, 20)
	ctx.BeginFrame()
	if err := ps.Draw(ctx.Shader); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}
	if ctx.Shader.Objects() != ps.Count() {
		t.Errorf("Objects() = %d, expected %d", ctx.Shader.Objects(), ps.Count())
	}

	ps.Reset()
	if ps.Count() != 0 || !ps.Active() {
		t.Error("Reset() should clear particles and restart emission")
	}
}

func TestParticleDuration(t *testing.T) {
	cfg := DefaultParticleConfig()
	cfg.Duration = 0.5
	cfg.Life = 0.1
	cfg.LifeVar = 0
	ps := NewParticleSystem(cfg, 7)

	for i := 0; i < 10; i++ {
		ps.Update(0.1, 0, 0)
	}
	if ps.Active() {
		t.Error("emitter should stop after its duration")
	}
	ps.Update(0.2, 0, 0)
	if ps.Count() != 0 {
		t.Errorf("Count() = %d, expected all particles expired", ps.Count())
	}
}
