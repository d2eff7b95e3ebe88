// Package render defines the backend-neutral drawing surface and host hooks.
// Animation code draws through Surface and is driven through Game, so the
// ebiten backend can be swapped for a recorder in tests.
package render

import (
	"image/color"
)

// Shadow is a glow drawn behind shapes and text.
// The zero value disables it.
type Shadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Color   color.Color
}

// Enabled reports whether the shadow draws anything.
func (s Shadow) Enabled() bool {
	return s.Color != nil && (s.Blur > 0 || s.OffsetX != 0 || s.OffsetY != 0)
}

// Surface is a 2D immediate-mode drawing context.
// Coordinates are in pixels with y growing downward.
type Surface interface {
	// Size returns the surface dimensions.
	Size() (width, height int)

	// Fill paints the whole surface, ignoring the current transform.
	Fill(clr color.Color)

	// Save pushes the transform and shadow state; Restore pops it.
	Save()
	Restore()

	// Translate moves the origin by (x, y) in the current transform.
	Translate(x, y float64)

	// Rotate rotates subsequent drawing clockwise by degrees.
	Rotate(degrees float64)

	// SetShadow sets the glow used by subsequent drawing.
	SetShadow(s Shadow)

	// FillRoundedRect fills a rectangle with top-left (x, y) and corner radius r.
	FillRoundedRect(x, y, w, h, r float64, clr color.Color)

	// StrokeRoundedRect outlines a rectangle with top-left (x, y).
	StrokeRoundedRect(x, y, w, h, r, width float64, clr color.Color)

	// DrawText draws str centered on (x, y) at the given pixel size.
	DrawText(str string, x, y, size float64, clr color.Color)
}

// KeyEvent is a key press.
// Code is a physical key name such as "KeyA", "Space" or "ShiftLeft".
// Char is the typed character when the host knows it.
type KeyEvent struct {
	Code string
	Char string
}

// PointerEvent is a click or tap in surface coordinates.
type PointerEvent struct {
	X, Y float64
}

// Game is driven by a host adapter bound to the actual environment.
type Game interface {
	// OnInit is called once, with the first known surface size.
	OnInit(width, height int)

	// OnResize is called whenever the surface size changes after init.
	OnResize(width, height int)

	// OnTick runs one frame against the surface.
	OnTick(s Surface)

	// OnKeyEvent is called for every key press.
	OnKeyEvent(ev KeyEvent)

	// OnPointerEvent is called for every click or tap.
	OnPointerEvent(ev PointerEvent)
}

// Engine represents the host that owns the window and the frame loop.
type Engine interface {
	// SetWindowSize sets the window size in pixels.
	SetWindowSize(width, height int)

	// SetWindowTitle sets the window title.
	SetWindowTitle(title string)

	// SetWindowResizable enables or disables window resizing.
	SetWindowResizable(resizable bool)

	// SetTPS sets the number of ticks per second.
	SetTPS(tps int)

	// RunGame runs the frame loop until the window closes.
	// This is a blocking call.
	RunGame(game Game) error
}
