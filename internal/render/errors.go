package render

import "errors"

// ErrReleased is returned by any subsystem used after its release point.
var ErrReleased = errors.New("render: subsystem released")

// ErrNotInitialized is returned when drawing before the shader is initialized.
var ErrNotInitialized = errors.New("render: shader not initialized")
