package render

import "github.com/vovakirdan/luaframe/internal/core"

// PrimitiveKind selects how a primitive is rasterized.
type PrimitiveKind int

const (
	PrimQuad  PrimitiveKind = iota // filled rectangle, optionally textured
	PrimLine                       // line between (X0,Y0) and (X1,Y1)
	PrimFrame                      // rectangle outline
)

// NoTexture marks an untextured primitive.
const NoTexture = -1

// DefaultGlyph fills untextured quads.
const DefaultGlyph = '█'

// Primitive is one object submitted to the shader batch.
type Primitive struct {
	Kind  PrimitiveKind
	Dst   core.Rect
	X0    int
	Y0    int
	X1    int
	Y1    int
	Tex   int
	Src   core.Rect
	Glyph rune
	Color core.Color
}

// Quad returns an untextured filled rectangle.
func Quad(dst core.Rect, glyph rune, c core.Color) Primitive {
	return Primitive{Kind: PrimQuad, Dst: dst, Tex: NoTexture, Glyph: glyph, Color: c}
}

// TexturedQuad returns a rectangle sampled from a texture region.
func TexturedQuad(dst core.Rect, tex int, src core.Rect) Primitive {
	return Primitive{Kind: PrimQuad, Dst: dst, Tex: tex, Src: src, Glyph: DefaultGlyph}
}

// Line returns a line primitive.
func Line(x0, y0, x1, y1 int, glyph rune, c core.Color) Primitive {
	return Primitive{Kind: PrimLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Tex: NoTexture, Glyph: glyph, Color: c}
}

// Frame returns a rectangle outline primitive.
func Frame(dst core.Rect, c core.Color) Primitive {
	return Primitive{Kind: PrimFrame, Dst: dst, Tex: NoTexture, Color: c}
}

// Offset returns the primitive translated by (dx, dy).
func (p Primitive) Offset(dx, dy int) Primitive {
	p.Dst.X += dx
	p.Dst.Y += dy
	p.X0 += dx
	p.Y0 += dy
	p.X1 += dx
	p.Y1 += dy
	return p
}
