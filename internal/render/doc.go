// Package render holds the native subsystems a scripting session draws with:
// the batching shader, the label (text) batch, the texture cache, and the
// sprite, matrix, particle and render-buffer primitives built on top of them.
//
// Everything renders into a core.Screen. A Context groups the subsystems of
// one session and releases them in a fixed order: labels, then textures,
// then the shader. Any use after release fails with ErrReleased.
package render
