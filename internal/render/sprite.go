package render

import (
	"fmt"
	"math"

	"github.com/vovakirdan/luaframe/internal/core"
)

// Picture is one named image in a sprite pack: a texture region and the
// size in cells it is drawn at.
type Picture struct {
	Name string
	Tex  int
	Src  core.Rect
	W    int
	H    int
}

// Animation is a named sequence of picture ids.
type Animation struct {
	Name   string
	Frames []int
}

// Pack is a set of pictures and animations addressed by id. Pictures take
// ids [0, len(Pictures)) and animations follow them.
type Pack struct {
	Pictures   []Picture
	Animations []Animation
	names      map[string]int
}

// NewPack indexes pictures and animations by name.
func NewPack(pictures []Picture, animations []Animation) (*Pack, error) {
	p := &Pack{
		Pictures:   pictures,
		Animations: animations,
		names:      make(map[string]int, len(pictures)+len(animations)),
	}
	for i, pic := range pictures {
		if err := p.index(pic.Name, i); err != nil {
			return nil, err
		}
	}
	for i, anim := range animations {
		for _, f := range anim.Frames {
			if f < 0 || f >= len(pictures) {
				return nil, fmt.Errorf("render: animation %q references missing picture %d", anim.Name, f)
			}
		}
		if err := p.index(anim.Name, len(pictures)+i); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pack) index(name string, id int) error {
	if name == "" {
		return nil
	}
	if _, dup := p.names[name]; dup {
		return fmt.Errorf("render: duplicate sprite name %q", name)
	}
	p.names[name] = id
	return nil
}

// Query returns the id registered for name.
func (p *Pack) Query(name string) (int, bool) {
	id, ok := p.names[name]
	return id, ok
}

// Names returns every named entry, pictures first.
func (p *Pack) Names() []string {
	names := make([]string, 0, len(p.names))
	for _, pic := range p.Pictures {
		if pic.Name != "" {
			names = append(names, pic.Name)
		}
	}
	for _, anim := range p.Animations {
		if anim.Name != "" {
			names = append(names, anim.Name)
		}
	}
	return names
}

// Len returns the number of addressable ids.
func (p *Pack) Len() int {
	return len(p.Pictures) + len(p.Animations)
}

// Sprite is a drawable instance: a pack entry or a text label.
type Sprite struct {
	Pack    *Pack
	ID      int
	Frame   int
	Visible bool
	Color   core.Color
	Matrix  Matrix
	Text    string
	IsLabel bool
}

// NewSprite creates a sprite for entry id of pack.
func NewSprite(pack *Pack, id int) (*Sprite, error) {
	if pack == nil || id < 0 || id >= pack.Len() {
		return nil, fmt.Errorf("render: sprite id %d out of range", id)
	}
	return &Sprite{Pack: pack, ID: id, Visible: true, Matrix: Identity()}, nil
}

// NewLabel creates a text sprite.
func NewLabel(text string, c core.Color) *Sprite {
	return &Sprite{Text: text, Color: c, Visible: true, Matrix: Identity(), IsLabel: true}
}

// Name returns the pack name of the sprite's entry, or its text for labels.
func (s *Sprite) Name() string {
	if s.IsLabel {
		return s.Text
	}
	for name, id := range s.Pack.names {
		if id == s.ID {
			return name
		}
	}
	return ""
}

// FrameCount returns the number of frames of an animation sprite, 1 otherwise.
func (s *Sprite) FrameCount() int {
	if s.IsLabel || s.ID < len(s.Pack.Pictures) {
		return 1
	}
	return len(s.Pack.Animations[s.ID-len(s.Pack.Pictures)].Frames)
}

// SetFrame selects the current frame, wrapping around the animation length.
func (s *Sprite) SetFrame(n int) {
	count := s.FrameCount()
	if count <= 1 {
		s.Frame = 0
		return
	}
	s.Frame = ((n % count) + count) % count
}

func (s *Sprite) picture() (Picture, bool) {
	if s.IsLabel || s.Pack == nil {
		return Picture{}, false
	}
	if s.ID < len(s.Pack.Pictures) {
		return s.Pack.Pictures[s.ID], true
	}
	anim := s.Pack.Animations[s.ID-len(s.Pack.Pictures)]
	if len(anim.Frames) == 0 {
		return Picture{}, false
	}
	return s.Pack.Pictures[anim.Frames[s.Frame%len(anim.Frames)]], true
}

// Primitive returns the shader primitive for the sprite drawn at (x, y).
// Labels and empty animations produce false.
func (s *Sprite) Primitive(x, y float64) (Primitive, bool) {
	pic, ok := s.picture()
	if !ok || !s.Visible {
		return Primitive{}, false
	}
	px, py := s.Matrix.Transform(x, y)
	sx, sy := s.Matrix.ScaleFactors()
	dst := core.NewRect(
		int(math.Round(px)),
		int(math.Round(py)),
		int(math.Round(float64(pic.W)*sx)),
		int(math.Round(float64(pic.H)*sy)),
	)
	if pic.Tex == NoTexture {
		return Quad(dst, DefaultGlyph, s.Color), true
	}
	p := TexturedQuad(dst, pic.Tex, pic.Src)
	p.Color = s.Color
	return p, true
}

// Draw submits the sprite at (x, y): labels to the label batch, pictures to the shader.
func (s *Sprite) Draw(ctx *Context, x, y float64) error {
	if !s.Visible {
		return nil
	}
	if s.IsLabel {
		px, py := s.Matrix.Transform(x, y)
		return ctx.Labels.Draw(int(math.Round(px)), int(math.Round(py)), s.Text, s.Color)
	}
	p, ok := s.Primitive(x, y)
	if !ok {
		return nil
	}
	return ctx.Shader.Draw(p)
}
