package render

// Buffer collects sprite primitives so they can be replayed as one batch.
type Buffer struct {
	prims []Primitive
}

// NewBuffer creates an empty render buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add records the sprite drawn at (x, y). Labels are not buffered and report false.
func (b *Buffer) Add(s *Sprite, x, y float64) bool {
	p, ok := s.Primitive(x, y)
	if !ok {
		return false
	}
	b.prims = append(b.prims, p)
	return true
}

// Len returns the number of buffered primitives.
func (b *Buffer) Len() int {
	return len(b.prims)
}

// Clear drops all buffered primitives.
func (b *Buffer) Clear() {
	b.prims = b.prims[:0]
}

// Draw submits the buffer offset by (dx, dy) and commits it as its own batch.
func (b *Buffer) Draw(sh *Shader, dx, dy int) error {
	if err := sh.Flush(); err != nil {
		return err
	}
	for _, p := range b.prims {
		if err := sh.Draw(p.Offset(dx, dy)); err != nil {
			return err
		}
	}
	return sh.Flush()
}
