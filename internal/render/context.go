package render

import (
	"github.com/vovakirdan/luaframe/internal/core"
)

// Subsystem names reported to Context.OnRelease.
const (
	SubsystemLabel   = "label"
	SubsystemTexture = "texture"
	SubsystemShader  = "shader"
)

// Context groups the render subsystems owned by one session.
type Context struct {
	Screen   *core.Screen
	Shader   *Shader
	Labels   *Labels
	Textures *Textures

	// OnRelease, if set, is called after each subsystem is released.
	OnRelease func(subsystem string)

	released bool
}

// NewContext creates the subsystems for a screen. Call Init before drawing.
func NewContext(screen *core.Screen) *Context {
	textures := NewTextures()
	shader := NewShader(screen, textures)
	return &Context{
		Screen:   screen,
		Shader:   shader,
		Labels:   NewLabels(screen, shader),
		Textures: textures,
	}
}

// Init initializes the shader and loads the label cache, in that order.
func (c *Context) Init() error {
	if err := c.Shader.Init(); err != nil {
		return err
	}
	return c.Labels.Load()
}

// BeginFrame resets the per-frame counters.
func (c *Context) BeginFrame() {
	c.Shader.ResetDrawCalls()
}

// EndFrame flushes the shader batch and then the label batch.
func (c *Context) EndFrame() error {
	if err := c.Shader.Flush(); err != nil {
		return err
	}
	return c.Labels.Flush()
}

// Release unloads labels, releases textures and unloads the shader, in that order.
// It is safe to call more than once.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true

	c.Labels.Unload()
	c.notify(SubsystemLabel)
	c.Textures.Exit()
	c.notify(SubsystemTexture)
	c.Shader.Unload()
	c.notify(SubsystemShader)
}

func (c *Context) notify(name string) {
	if c.OnRelease != nil {
		c.OnRelease(name)
	}
}
