package ebiten

import (
	"unicode"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
)

// keyCode converts an ebiten key to a physical key code such as "KeyA",
// "Digit1" or "ShiftLeft". Ebiten names letters without the "Key" prefix.
func keyCode(k ebiten.Key) string {
	name := k.String()
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return "Key" + name
	}
	return name
}

// keyChar is the character k types on the current layout, or "" for keys
// that type nothing visible.
func keyChar(k ebiten.Key) string {
	if c := printable(ebiten.KeyName(k)); c != "" {
		return c
	}
	return usLayout[keyCode(k)]
}

// printable returns s if it is a single visible character.
func printable(s string) string {
	if utf8.RuneCountInString(s) != 1 {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsGraphic(r) || unicode.IsSpace(r) {
		return ""
	}
	return s
}

// usLayout covers punctuation when the platform cannot name keys.
var usLayout = map[string]string{
	"Minus":          "-",
	"Equal":          "=",
	"BracketLeft":    "[",
	"BracketRight":   "]",
	"Backslash":      "\\",
	"Semicolon":      ";",
	"Quote":          "'",
	"Backquote":      "`",
	"Comma":          ",",
	"Period":         ".",
	"Slash":          "/",
	"NumpadAdd":      "+",
	"NumpadSubtract": "-",
	"NumpadMultiply": "*",
	"NumpadDivide":   "/",
	"NumpadDecimal":  ".",
	"NumpadEqual":    "=",
}
