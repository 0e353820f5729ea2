package board

import (
	"fmt"
	"strings"
	"unicode"
)

// Color is a tile color. The set is closed; mapping to terminal colors happens
// in the presentation layer.
type Color int

const (
	Red Color = iota
	Green
	Blue
	Yellow
	Purple
	Orange
)

// AllColors lists every color in palette order.
var AllColors = []Color{Red, Green, Blue, Yellow, Purple, Orange}

var colorNames = map[Color]string{
	Red:    "red",
	Green:  "green",
	Blue:   "blue",
	Yellow: "yellow",
	Purple: "purple",
	Orange: "orange",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// Letter returns the single-letter form used by layout files.
func (c Color) Letter() rune {
	name, ok := colorNames[c]
	if !ok {
		return '?'
	}
	return unicode.ToUpper(rune(name[0]))
}

// ParseColor maps a layout letter (case-insensitive) back to its color.
func ParseColor(r rune) (Color, bool) {
	for _, c := range AllColors {
		if c.Letter() == unicode.ToUpper(r) {
			return c, true
		}
	}
	return 0, false
}

// Palette is the set of colors a board draws from.
type Palette []Color

// DefaultPalette is used when no palette size is configured.
var DefaultPalette = Palette{Red, Green, Blue, Yellow}

// PaletteOf returns the first n colors. n is clamped to [1, len(AllColors)].
func PaletteOf(n int) Palette {
	if n < 1 {
		n = 1
	}
	if n > len(AllColors) {
		n = len(AllColors)
	}
	p := make(Palette, n)
	copy(p, AllColors[:n])
	return p
}

func (p Palette) Contains(c Color) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// String renders the palette as its letters, e.g. "RGBY".
func (p Palette) String() string {
	var b strings.Builder
	for _, c := range p {
		b.WriteRune(c.Letter())
	}
	return b.String()
}
