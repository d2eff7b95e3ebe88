package scene

import "errors"

// ErrClosed is returned by Spawn after Close.
var ErrClosed = errors.New("scene: session closed")
