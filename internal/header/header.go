// Package header lays out the static title as a set of key tiles.
package header

import (
	"image/color"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/mormel/keyfall/internal/config"
	"github.com/mormel/keyfall/internal/key"
)

// Layout is the line split and letter size chosen for a surface width.
type Layout struct {
	Lines      []string
	LetterSize float64
	Multiline  bool
}

// Compute picks one line per word below the breakpoint and a single line
// otherwise. Letter size shrinks as the longest line grows.
func Compute(width float64, cfg config.HeaderConfig) Layout {
	multiline := width < cfg.MultilineBreakpoint

	var lines []string
	if multiline {
		lines = strings.Fields(cfg.Text)
	} else if strings.TrimSpace(cfg.Text) != "" {
		lines = []string{cfg.Text}
	}

	longest := 0
	for _, line := range lines {
		longest = max(longest, utf8.RuneCountInString(line))
	}
	if longest == 0 || width <= 0 {
		return Layout{Lines: lines, Multiline: multiline}
	}

	return Layout{
		Lines:      lines,
		LetterSize: width / (float64(longest) * cfg.SizeDivisor),
		Multiline:  multiline,
	}
}

// Place returns one key per non-space character, left to right and line by
// line, each tilted by a small random angle.
func Place(l Layout, width float64, cfg config.HeaderConfig, rng *rand.Rand, colors func() color.Color) []key.Params {
	if l.LetterSize <= 0 {
		return nil
	}

	size := l.LetterSize
	var out []key.Params
	for n, line := range l.Lines {
		runes := []rune(line)
		half := float64(len(runes)) / 2
		y := float64(n+1) * size * cfg.LineHeight

		for i, r := range runes {
			if r == ' ' {
				continue
			}
			out = append(out, key.Params{
				X:     width/2 + (size+cfg.LetterSpacing)*(float64(i)-half) + size/2,
				Y:     y,
				Size:  size,
				Label: string(r),
				Color: colors(),
				Angle: (rng.Float64()*2 - 1) * cfg.MaxLetterRotation,
			})
		}
	}
	return out
}
