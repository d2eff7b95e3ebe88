// Package palette generates the glow colors.
package palette

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Bright produces vivid colors: the hue is random, saturation and lightness are fixed.
type Bright struct {
	Saturation float64
	Lightness  float64
	rng        *rand.Rand
}

// NewBright creates a generator drawing hues from rng.
func NewBright(rng *rand.Rand, saturation, lightness float64) *Bright {
	return &Bright{Saturation: saturation, Lightness: lightness, rng: rng}
}

// Next returns a color with a whole-degree hue in [0, 360].
func (b *Bright) Next() color.Color {
	hue := float64(b.rng.IntN(361))
	return HSL(hue, b.Saturation, b.Lightness)
}

// HSL converts to an opaque RGBA color.
func HSL(hue, saturation, lightness float64) color.RGBA {
	r, g, bl := colorful.Hsl(hue, saturation, lightness).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}

// Hex parses "#rrggbb" or "#rgb".
func Hex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("palette: %w", err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// MustHex is Hex for values already checked by config validation.
func MustHex(s string) color.RGBA {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
