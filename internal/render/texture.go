package render

import (
	"fmt"
	"image"
)

// MaxTextures is the number of texture slots a session can hold.
const MaxTextures = 128

// Texture is a decoded image bound to a slot.
type Texture struct {
	ID     int
	Img    image.Image
	W      int
	H      int
	Format string
}

// Textures is the per-session texture cache, indexed by slot id.
type Textures struct {
	slots    [MaxTextures]*Texture
	released bool
}

// NewTextures creates an empty texture cache.
func NewTextures() *Textures {
	return &Textures{}
}

func checkSlot(id int) error {
	if id < 0 || id >= MaxTextures {
		return fmt.Errorf("render: texture id %d out of range [0, %d)", id, MaxTextures)
	}
	return nil
}

// Load binds an image to slot id, replacing whatever was there.
func (t *Textures) Load(id int, img image.Image, format string) (*Texture, error) {
	if t.released {
		return nil, ErrReleased
	}
	if err := checkSlot(id); err != nil {
		return nil, err
	}
	b := img.Bounds()
	tex := &Texture{
		ID:     id,
		Img:    img,
		W:      b.Dx(),
		H:      b.Dy(),
		Format: format,
	}
	t.slots[id] = tex
	return tex, nil
}

// Get returns the texture in slot id, or nil if the slot is empty.
func (t *Textures) Get(id int) (*Texture, error) {
	if t.released {
		return nil, ErrReleased
	}
	if err := checkSlot(id); err != nil {
		return nil, err
	}
	return t.slots[id], nil
}

// Unload empties slot id.
func (t *Textures) Unload(id int) error {
	if t.released {
		return ErrReleased
	}
	if err := checkSlot(id); err != nil {
		return err
	}
	t.slots[id] = nil
	return nil
}

// Count returns the number of occupied slots.
func (t *Textures) Count() int {
	n := 0
	for _, tex := range t.slots {
		if tex != nil {
			n++
		}
	}
	return n
}

// Exit drops every texture. Later calls fail with ErrReleased.
func (t *Textures) Exit() {
	for i := range t.slots {
		t.slots[i] = nil
	}
	t.released = true
}
