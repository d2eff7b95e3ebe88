// Package rendertest provides a render.Surface that records calls.
package rendertest

import (
	"image/color"

	"github.com/mormel/keyfall/internal/render"
)

// OpKind names a recorded call.
type OpKind string

const (
	OpFill       OpKind = "fill"
	OpSave       OpKind = "save"
	OpRestore    OpKind = "restore"
	OpTranslate  OpKind = "translate"
	OpRotate     OpKind = "rotate"
	OpShadow     OpKind = "shadow"
	OpFillRect   OpKind = "fill-rect"
	OpStrokeRect OpKind = "stroke-rect"
	OpText       OpKind = "text"
)

// Op is one recorded call. Unused fields stay zero.
type Op struct {
	Kind   OpKind
	X, Y   float64
	W, H   float64
	Radius float64
	Width  float64 // Stroke width
	Size   float64 // Text size
	Angle  float64 // Degrees
	Text   string
	Color  color.Color
	Shadow render.Shadow
}

// Recorder implements render.Surface by appending every call to Ops.
type Recorder struct {
	Width, Height int
	Ops           []Op

	depth    int
	maxDepth int
}

var _ render.Surface = (*Recorder)(nil)

// New creates a recorder reporting the given size.
func New(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

// Size implements render.Surface.
func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

// Fill implements render.Surface.
func (r *Recorder) Fill(clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Color: clr})
}

// Save implements render.Surface.
func (r *Recorder) Save() {
	r.depth++
	if r.depth > r.maxDepth {
		r.maxDepth = r.depth
	}
	r.Ops = append(r.Ops, Op{Kind: OpSave})
}

// Restore implements render.Surface.
func (r *Recorder) Restore() {
	r.depth--
	r.Ops = append(r.Ops, Op{Kind: OpRestore})
}

// Translate implements render.Surface.
func (r *Recorder) Translate(x, y float64) {
	r.Ops = append(r.Ops, Op{Kind: OpTranslate, X: x, Y: y})
}

// Rotate implements render.Surface.
func (r *Recorder) Rotate(degrees float64) {
	r.Ops = append(r.Ops, Op{Kind: OpRotate, Angle: degrees})
}

// SetShadow implements render.Surface.
func (r *Recorder) SetShadow(s render.Shadow) {
	r.Ops = append(r.Ops, Op{Kind: OpShadow, Shadow: s})
}

// FillRoundedRect implements render.Surface.
func (r *Recorder) FillRoundedRect(x, y, w, h, radius float64, clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Radius: radius, Color: clr})
}

// StrokeRoundedRect implements render.Surface.
func (r *Recorder) StrokeRoundedRect(x, y, w, h, radius, width float64, clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeRect, X: x, Y: y, W: w, H: h, Radius: radius, Width: width, Color: clr})
}

// DrawText implements render.Surface.
func (r *Recorder) DrawText(str string, x, y, size float64, clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, X: x, Y: y, Size: size, Text: str, Color: clr})
}

// Balanced reports whether every Save was matched by a Restore.
func (r *Recorder) Balanced() bool { return r.depth == 0 }

// MaxDepth is the deepest Save nesting seen.
func (r *Recorder) MaxDepth() int { return r.maxDepth }

// OfKind returns the recorded ops of one kind, in order.
func (r *Recorder) OfKind(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every drawn string, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.OfKind(OpText) {
		out = append(out, op.Text)
	}
	return out
}

// Reset drops recorded ops.
func (r *Recorder) Reset() {
	r.Ops = nil
	r.depth = 0
	r.maxDepth = 0
}
