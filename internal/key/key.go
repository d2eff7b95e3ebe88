// Package key implements the falling, rotating, glowing key tile.
package key

import (
	"errors"
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/mormel/keyfall/internal/render"
)

var (
	// ErrInvalidSize is returned for a non-positive size.
	ErrInvalidSize = errors.New("key size must be positive")
	// ErrEmptyLabel is returned for an empty label.
	ErrEmptyLabel = errors.New("key label must not be empty")
)

// Params describes a key to create.
type Params struct {
	X, Y          float64
	Size          float64
	Label         string
	Color         color.Color
	Speed         float64 // Positive moves up
	Angle         float64 // Degrees
	RotationSpeed float64 // Degrees per tick
}

// Physics holds the fixed kinematics constants.
type Physics struct {
	Gravity  float64
	MaxSpeed float64
}

// BoundsPolicy decides when a key has left the surface for good.
type BoundsPolicy int

const (
	// SpeedGated kills a key once it is falling and below the bottom edge,
	// so a key still rising from below the edge survives.
	SpeedGated BoundsPolicy = iota
	// Margin kills a key once it is Margin pixels below the bottom edge,
	// whichever way it moves.
	Margin
)

func (p BoundsPolicy) String() string {
	switch p {
	case SpeedGated:
		return "speed_gated"
	case Margin:
		return "margin"
	default:
		return "unknown"
	}
}

// Bounds configures CheckBounds.
type Bounds struct {
	Policy BoundsPolicy
	Margin float64
}

// Key is a single tile. Keys never reference each other.
type Key struct {
	X, Y          float64
	Size          float64
	Label         string
	Color         color.Color
	Speed         float64
	Angle         float64
	RotationSpeed float64

	alive bool
}

// New creates a live key.
func New(p Params) (*Key, error) {
	if !(p.Size > 0) {
		return nil, ErrInvalidSize
	}
	if p.Label == "" {
		return nil, ErrEmptyLabel
	}
	return &Key{
		X:             p.X,
		Y:             p.Y,
		Size:          p.Size,
		Label:         p.Label,
		Color:         p.Color,
		Speed:         p.Speed,
		Angle:         wrap360(p.Angle),
		RotationSpeed: p.RotationSpeed,
		alive:         true,
	}, nil
}

// Alive reports whether the key is still active. Once false it stays false.
func (k *Key) Alive() bool { return k.alive }

// Advance moves the key one tick. Screen y grows downward, so a positive
// speed moves the key up.
func (k *Key) Advance(ph Physics) {
	if !k.alive {
		return
	}
	k.Y -= k.Speed
	k.Speed = math.Max(k.Speed-ph.Gravity, -ph.MaxSpeed)
	k.Angle = wrap360(k.Angle + k.RotationSpeed)
}

// CheckBounds marks the key dead once it has left through the bottom edge.
func (k *Key) CheckBounds(height float64, b Bounds) {
	if !k.alive {
		return
	}
	switch b.Policy {
	case Margin:
		if k.Y > height+b.Margin {
			k.alive = false
		}
	default:
		if k.Speed < 0 && k.Y > height {
			k.alive = false
		}
	}
}

// DefaultWidthStep is used when a Style leaves WidthStep unset.
const DefaultWidthStep = 1.5

// Width grows with the label length so multi-character labels fit.
// Each extra rune adds Size/widthStep.
func (k *Key) Width(widthStep float64) float64 {
	if widthStep <= 0 {
		widthStep = DefaultWidthStep
	}
	n := utf8.RuneCountInString(k.Label)
	return k.Size + (k.Size/widthStep)*float64(n-1)
}

// wrap360 maps any angle into [0, 360).
func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -tiny + 360 rounds to 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Style holds the render proportions and colors shared by every key.
type Style struct {
	Fill        color.Color
	Outline     color.Color
	Text        color.Color
	CornerRatio float64
	StrokeRatio float64
	MinStroke   float64
	WidthStep   float64
	LabelInset  float64
	Glow        render.Shadow // Color is replaced by the key's color
	LabelGlow   render.Shadow
}

// Render draws the key centered on its position. It does not change the key.
func (k *Key) Render(s render.Surface, st Style) {
	if !k.alive {
		return
	}

	w := k.Width(st.WidthStep)
	h := k.Size
	corner := k.Size * st.CornerRatio
	stroke := math.Max(k.Size*st.StrokeRatio, st.MinStroke)

	s.Save()
	defer s.Restore()

	s.Translate(k.X, k.Y)
	s.Rotate(k.Angle)

	glow := st.Glow
	glow.Color = k.Color
	s.SetShadow(glow)
	s.FillRoundedRect(-w/2, -h/2, w, h, corner, st.Fill)
	s.StrokeRoundedRect(-w/2, -h/2, w, h, corner, stroke, st.Outline)

	labelGlow := st.LabelGlow
	labelGlow.Color = k.Color
	s.SetShadow(labelGlow)
	s.DrawText(k.Label, 0, 0, math.Max(k.Size-st.LabelInset, 1), st.Text)
}
