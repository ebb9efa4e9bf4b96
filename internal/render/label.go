package render

import (
	"github.com/vovakirdan/luaframe/internal/core"
)

type labelDraw struct {
	x, y  int
	text  string
	color core.Color
}

// Labels batches text draws. Text is written after the shader batch on
// flush so labels always end up on top of the frame.
type Labels struct {
	target *core.Screen
	shader *Shader
	batch  []labelDraw

	loaded   bool
	released bool
}

// NewLabels creates a label batch bound to the shader's draw call counter.
func NewLabels(target *core.Screen, shader *Shader) *Labels {
	return &Labels{target: target, shader: shader}
}

// Load prepares the label cache.
func (l *Labels) Load() error {
	if l.released {
		return ErrReleased
	}
	l.loaded = true
	return nil
}

// Draw queues text at (x, y).
func (l *Labels) Draw(x, y int, text string, c core.Color) error {
	if l.released {
		return ErrReleased
	}
	if !l.loaded {
		return ErrNotInitialized
	}
	l.batch = append(l.batch, labelDraw{x: x, y: y, text: text, color: c})
	l.shader.objects++
	return nil
}

// Flush writes queued text into the target as a single draw call.
func (l *Labels) Flush() error {
	if l.released {
		return ErrReleased
	}
	if len(l.batch) == 0 {
		return nil
	}
	for _, d := range l.batch {
		l.target.DrawText(d.x, d.y, d.text, d.color)
	}
	l.batch = l.batch[:0]
	l.shader.addDrawCall()
	return nil
}

// Pending returns the number of queued labels.
func (l *Labels) Pending() int {
	return len(l.batch)
}

// Unload drops the label cache. Later calls fail with ErrReleased.
func (l *Labels) Unload() {
	l.batch = nil
	l.loaded = false
	l.released = true
}
