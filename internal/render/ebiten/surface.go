package ebiten

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/mormel/keyfall/internal/render"
)

// glowLayers is how many fading copies approximate a blurred shadow.
const glowLayers = 4

// state is what Save pushes and Restore pops.
type state struct {
	geo    ebiten.GeoM
	shadow render.Shadow
}

// Surface implements render.Surface on top of an ebiten.Image.
type Surface struct {
	img   *ebiten.Image
	font  *text.GoTextFaceSource
	cur   state
	stack []state

	vs []ebiten.Vertex
	is []uint16
}

var _ render.Surface = (*Surface)(nil)

func newSurface(img *ebiten.Image, font *text.GoTextFaceSource) *Surface {
	return &Surface{img: img, font: font}
}

// WrapImage exposes an existing ebiten image as a render.Surface.
func WrapImage(img *ebiten.Image) (*Surface, error) {
	font, err := loadFont()
	if err != nil {
		return nil, err
	}
	return newSurface(img, font), nil
}

// Size returns the width and height of the image.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Fill fills the entire image with the given color.
func (s *Surface) Fill(clr color.Color) {
	s.img.Fill(clr)
}

// Save pushes the transform and shadow.
func (s *Surface) Save() {
	s.stack = append(s.stack, s.cur)
}

// Restore pops the transform and shadow. Extra calls are ignored.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.cur = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Translate moves the local origin.
func (s *Surface) Translate(x, y float64) {
	var m ebiten.GeoM
	m.Translate(x, y)
	m.Concat(s.cur.geo)
	s.cur.geo = m
}

// Rotate turns local axes clockwise by degrees.
func (s *Surface) Rotate(degrees float64) {
	var m ebiten.GeoM
	m.Rotate(degrees * math.Pi / 180)
	m.Concat(s.cur.geo)
	s.cur.geo = m
}

// SetShadow sets the glow for subsequent drawing.
func (s *Surface) SetShadow(sh render.Shadow) {
	s.cur.shadow = sh
}

// FillRoundedRect fills a rounded rectangle, glow first.
func (s *Surface) FillRoundedRect(x, y, w, h, r float64, clr color.Color) {
	s.glow(func(grow float64) (*vector.Path, *vector.StrokeOptions) {
		return roundedRect(x-grow, y-grow, w+2*grow, h+2*grow, r+grow), nil
	})
	if p := roundedRect(x, y, w, h, r); p != nil {
		s.drawPath(p, nil, clr, 1, 0, 0)
	}
}

// StrokeRoundedRect outlines a rounded rectangle, glow first.
func (s *Surface) StrokeRoundedRect(x, y, w, h, r, width float64, clr color.Color) {
	s.glow(func(grow float64) (*vector.Path, *vector.StrokeOptions) {
		return roundedRect(x, y, w, h, r), strokeOptions(width + 2*grow)
	})
	if p := roundedRect(x, y, w, h, r); p != nil {
		s.drawPath(p, strokeOptions(width), clr, 1, 0, 0)
	}
}

// DrawText draws str centered on (x, y).
func (s *Surface) DrawText(str string, x, y, size float64, clr color.Color) {
	if str == "" || size <= 0 {
		return
	}
	face := &text.GoTextFace{Source: s.font, Size: size}

	if sh := s.cur.shadow; sh.Enabled() {
		// A ring of faint copies stands in for a blurred text shadow.
		const ring = 8
		radius := sh.Blur / 2
		for i := 0; i < ring; i++ {
			a := 2 * math.Pi * float64(i) / ring
			dx := sh.OffsetX + radius*math.Cos(a)
			dy := sh.OffsetY + radius*math.Sin(a)
			s.drawText(str, face, x, y, dx, dy, sh.Color, 0.35)
		}
	}
	s.drawText(str, face, x, y, 0, 0, clr, 1)
}

func (s *Surface) drawText(str string, face text.Face, x, y, dx, dy float64, clr color.Color, alpha float32) {
	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(s.cur.geo)
	// Shadow offsets are in screen space, like a canvas shadow.
	op.GeoM.Translate(dx, dy)
	op.ColorScale.ScaleWithColor(clr)
	op.ColorScale.ScaleAlpha(alpha)
	text.Draw(s.img, str, face, op)
}

// glow draws glowLayers fading copies of a shape grown outward, each
// offset by the shadow offset in screen space.
func (s *Surface) glow(shape func(grow float64) (*vector.Path, *vector.StrokeOptions)) {
	sh := s.cur.shadow
	if !sh.Enabled() {
		return
	}
	for i := glowLayers; i >= 1; i-- {
		frac := float64(i) / glowLayers
		p, stroke := shape(sh.Blur / 2 * frac)
		if p == nil {
			continue
		}
		alpha := float32(0.5 * (1 - frac + 1.0/glowLayers))
		s.drawPath(p, stroke, sh.Color, alpha, sh.OffsetX, sh.OffsetY)
	}
}

// drawPath triangulates p in local space, maps it through the current
// transform and draws it with a flat color.
func (s *Surface) drawPath(p *vector.Path, stroke *vector.StrokeOptions, clr color.Color, alpha float32, dx, dy float64) {
	if stroke != nil {
		s.vs, s.is = p.AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], stroke)
	} else {
		s.vs, s.is = p.AppendVerticesAndIndicesForFilling(s.vs[:0], s.is[:0])
	}
	if len(s.is) == 0 {
		return
	}

	r, g, b, a := straightAlpha(clr)
	a *= alpha
	for i := range s.vs {
		x, y := s.cur.geo.Apply(float64(s.vs[i].DstX), float64(s.vs[i].DstY))
		s.vs[i].DstX = float32(x + dx)
		s.vs[i].DstY = float32(y + dy)
		s.vs[i].SrcX = 1
		s.vs[i].SrcY = 1
		s.vs[i].ColorR = r
		s.vs[i].ColorG = g
		s.vs[i].ColorB = b
		s.vs[i].ColorA = a
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	if stroke == nil {
		op.FillRule = ebiten.FillRuleNonZero
	}
	s.img.DrawTriangles(s.vs, s.is, whitePixel(), op)
}

func strokeOptions(width float64) *vector.StrokeOptions {
	return &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
	}
}

// roundedRect builds a closed path with top-left (x, y). The radius is
// clamped to half the shorter side. Empty rectangles give nil.
func roundedRect(x, y, w, h, r float64) *vector.Path {
	if w <= 0 || h <= 0 {
		return nil
	}
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))

	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+w), float32(y+h)
	rr := float32(r)

	var p vector.Path
	p.MoveTo(x0+rr, y0)
	p.LineTo(x1-rr, y0)
	p.ArcTo(x1, y0, x1, y0+rr, rr)
	p.LineTo(x1, y1-rr)
	p.ArcTo(x1, y1, x1-rr, y1, rr)
	p.LineTo(x0+rr, y1)
	p.ArcTo(x0, y1, x0, y1-rr, rr)
	p.LineTo(x0, y0+rr)
	p.ArcTo(x0, y0, x0+rr, y0, rr)
	p.Close()
	return &p
}

// straightAlpha converts to non-premultiplied components in [0, 1].
func straightAlpha(clr color.Color) (r, g, b, a float32) {
	if clr == nil {
		return 0, 0, 0, 0
	}
	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	return float32(c.R) / 0xff, float32(c.G) / 0xff, float32(c.B) / 0xff, float32(c.A) / 0xff
}
