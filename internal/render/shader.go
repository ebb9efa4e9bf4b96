package render

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/vovakirdan/luaframe/internal/core"
)

// BlendMode is the blend state of the shader. Changing it ends the current batch.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdditive
)

// Program is a registered shader program. The terminal target has no GPU,
// so programs are kept for scripts that query them and to split batches.
type Program struct {
	ID       int
	Fragment string
	Vertex   string
}

// Shader batches primitives and rasterizes them into the screen.
// A draw call is counted every time a non-empty batch is committed, which
// happens on Flush and whenever the texture, program or blend state changes.
type Shader struct {
	target   *core.Screen
	textures *Textures

	batch     []Primitive
	batchTex  int
	program   int
	blend     BlendMode
	color     core.Color
	programs  map[int]Program
	drawCalls int
	objects   int

	ready    bool
	released bool
}

// NewShader creates a shader rendering into target and sampling from textures.
func NewShader(target *core.Screen, textures *Textures) *Shader {
	return &Shader{
		target:   target,
		textures: textures,
		batchTex: NoTexture,
		color:    core.ColorDefault,
		programs: make(map[int]Program),
	}
}

// Init prepares the shader for drawing. It must run before the first draw call.
func (s *Shader) Init() error {
	if s.released {
		return ErrReleased
	}
	s.ready = true
	return nil
}

func (s *Shader) check() error {
	if s.released {
		return ErrReleased
	}
	if !s.ready {
		return ErrNotInitialized
	}
	return nil
}

// Load registers a program under id, replacing any previous one.
func (s *Shader) Load(id int, fragment, vertex string) error {
	if err := s.check(); err != nil {
		return err
	}
	if id < 0 {
		return fmt.Errorf("render: invalid program id %d", id)
	}
	s.programs[id] = Program{ID: id, Fragment: fragment, Vertex: vertex}
	return nil
}

// Use switches the active program, ending the current batch on change.
func (s *Shader) Use(id int) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.programs[id]; !ok && id != 0 {
		return fmt.Errorf("render: program %d not loaded", id)
	}
	if id != s.program {
		s.commit()
		s.program = id
	}
	return nil
}

// Blend changes the blend mode, ending the current batch on change.
func (s *Shader) Blend(mode BlendMode) error {
	if err := s.check(); err != nil {
		return err
	}
	if mode != s.blend {
		s.commit()
		s.blend = mode
	}
	return nil
}

// SetColor sets the color applied to primitives submitted with ColorDefault.
func (s *Shader) SetColor(c core.Color) error {
	if err := s.check(); err != nil {
		return err
	}
	s.color = c
	return nil
}

// Clear fills the target with blank cells of the given color.
func (s *Shader) Clear(c core.Color) error {
	if err := s.check(); err != nil {
		return err
	}
	s.batch = s.batch[:0]
	s.target.FillColor(' ', c)
	return nil
}

// Draw appends a primitive to the batch.
func (s *Shader) Draw(p Primitive) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.batch) > 0 && p.Tex != s.batchTex {
		s.commit()
	}
	if p.Color == core.ColorDefault {
		p.Color = s.color
	}
	s.batchTex = p.Tex
	s.batch = append(s.batch, p)
	s.objects++
	return nil
}

// Flush commits any pending primitives.
func (s *Shader) Flush() error {
	if err := s.check(); err != nil {
		return err
	}
	s.commit()
	return nil
}

// ResetDrawCalls zeroes the per-frame draw call and object counters.
func (s *Shader) ResetDrawCalls() {
	s.drawCalls = 0
	s.objects = 0
}

// DrawCalls returns the number of committed batches since the last reset.
func (s *Shader) DrawCalls() int {
	return s.drawCalls
}

// Objects returns the number of primitives submitted since the last reset.
func (s *Shader) Objects() int {
	return s.objects
}

// Program returns a loaded program.
func (s *Shader) Program(id int) (Program, bool) {
	p, ok := s.programs[id]
	return p, ok
}

// Unload releases the shader. Later calls fail with ErrReleased.
func (s *Shader) Unload() {
	s.batch = nil
	s.programs = nil
	s.ready = false
	s.released = true
}

// addDrawCall counts a draw call issued by another batcher (labels).
func (s *Shader) addDrawCall() {
	s.drawCalls++
}

func (s *Shader) commit() {
	if len(s.batch) == 0 {
		return
	}
	for _, p := range s.batch {
		s.rasterize(p)
	}
	s.batch = s.batch[:0]
	s.batchTex = NoTexture
	s.drawCalls++
}

func (s *Shader) rasterize(p Primitive) {
	switch p.Kind {
	case PrimLine:
		s.target.DrawLine(p.X0, p.Y0, p.X1, p.Y1, glyphOr(p.Glyph), p.Color)
	case PrimFrame:
		s.target.DrawBox(p.Dst, p.Color)
	default:
		if p.Tex != NoTexture {
			if tex, err := s.textures.Get(p.Tex); err == nil && tex != nil {
				s.sample(p, tex)
				return
			}
		}
		s.target.DrawRect(p.Dst, glyphOr(p.Glyph), p.Color)
	}
}

// sample scales the source region of a texture onto the destination cells,
// one pixel per cell, and maps each pixel to the nearest palette color.
func (s *Shader) sample(p Primitive, tex *Texture) {
	if p.Dst.Empty() {
		return
	}
	src := image.Rect(p.Src.X, p.Src.Y, p.Src.Right(), p.Src.Bottom())
	if p.Src.Empty() {
		src = image.Rect(0, 0, tex.W, tex.H)
	}
	src = src.Add(tex.Img.Bounds().Min).Intersect(tex.Img.Bounds())
	if src.Empty() {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, p.Dst.W, p.Dst.H))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), tex.Img, src, draw.Src, nil)

	for y := 0; y < p.Dst.H; y++ {
		for x := 0; x < p.Dst.W; x++ {
			px := scaled.RGBAAt(x, y)
			if px.A < 0x80 {
				continue
			}
			s.target.SetCell(p.Dst.X+x, p.Dst.Y+y, glyphOr(p.Glyph), core.NearestColor(px))
		}
	}
}

func glyphOr(r rune) rune {
	if r == 0 {
		return DefaultGlyph
	}
	return r
}
