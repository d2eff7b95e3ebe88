// Package input turns key and pointer events into spawn parameters.
package input

import (
	"math/rand/v2"
	"strings"

	"github.com/mormel/keyfall/internal/config"
	"github.com/mormel/keyfall/internal/key"
	"github.com/mormel/keyfall/internal/palette"
	"github.com/mormel/keyfall/internal/render"
)

// Label maps a key event to its display label.
// Special codes use the table. Letter and digit codes give their character
// ("KeyA" -> "A", "Digit1" -> "1"), any other key shows the character it
// typed ("Minus" -> "-"), and only a key with no character shows its code.
// An empty result means the event carries nothing displayable.
func Label(ev render.KeyEvent, special map[string]string) string {
	if l, ok := special[ev.Code]; ok && l != "" {
		return l
	}
	if ev.Code == "" {
		return ev.Char
	}
	for _, prefix := range []string{"Key", "Digit", "Numpad"} {
		if rest, ok := strings.CutPrefix(ev.Code, prefix); ok && len(rest) == 1 {
			return rest
		}
	}
	if ev.Char != "" {
		return ev.Char
	}
	return ev.Code
}

// Adapter draws random spawn parameters within the configured ranges.
type Adapter struct {
	spawn  config.SpawnConfig
	labels map[string]string
	colors *palette.Bright
	rng    *rand.Rand
}

// NewAdapter creates an adapter. rng must not be shared across goroutines.
func NewAdapter(cfg *config.Config, rng *rand.Rand) *Adapter {
	return &Adapter{
		spawn:  cfg.Spawn,
		labels: cfg.Labels,
		colors: palette.NewBright(rng, cfg.Color.Saturation, cfg.Color.Lightness),
		rng:    rng,
	}
}

// KeyPress spawns a key with the pressed key's label at a random x.
// ok is false when the event has no displayable label.
func (a *Adapter) KeyPress(ev render.KeyEvent, width, height float64) (p key.Params, ok bool) {
	label := Label(ev, a.labels)
	if label == "" {
		return key.Params{}, false
	}
	x := a.between(0, max(width-a.spawn.MaxSize, 0))
	return a.params(label, x, height), true
}

// PointerClick spawns the click label at the click's x.
func (a *Adapter) PointerClick(ev render.PointerEvent, width, height float64) key.Params {
	return a.params(a.spawn.ClickLabel, ev.X, height)
}

// params rises from just below the bottom edge.
func (a *Adapter) params(label string, x, height float64) key.Params {
	s := a.spawn
	return key.Params{
		X:             x,
		Y:             height + a.between(s.MinInitialOffset, s.MaxInitialOffset),
		Size:          a.between(s.MinSize, s.MaxSize),
		Label:         label,
		Color:         a.colors.Next(),
		Speed:         a.between(s.MinInitialSpeed, s.MaxInitialSpeed),
		RotationSpeed: a.between(-s.MaxRotationSpeed, s.MaxRotationSpeed),
	}
}

// between returns a value in [lo, hi), or lo for an empty range.
func (a *Adapter) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + a.rng.Float64()*(hi-lo)
}
