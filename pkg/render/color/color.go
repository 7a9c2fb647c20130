// Package color assigns stable colours to notebook and job ids.
//
// The same id always maps to the same colour, across processes and runs,
// so a notebook keeps its colour between the commit graph and every
// execution of it. Colours are picked on the HSL wheel with three
// saturation and lightness levels (0.35, 0.5, 0.65).
package color

import (
	"unicode/utf16"

	"github.com/lucasb-eyer/go-colorful"
)

// Levels used for both saturation and lightness.
var levels = []float64{0.35, 0.5, 0.65}

const (
	// DarkText is drawn on light backgrounds.
	DarkText = "#222"
	// LightText is drawn on dark backgrounds.
	LightText = "#eee"
)

// Hex returns the "#rrggbb" colour of id.
func Hex(id string) string {
	h, s, l := HSL(id)
	return colorful.Hsl(h, s, l).Hex()
}

// HSL returns the hue (degrees), saturation and lightness of id.
func HSL(id string) (h, s, l float64) {
	hash := bkdr(id)
	h = float64(hash % 359)
	hash /= 360
	s = levels[hash%int64(len(levels))]
	hash /= int64(len(levels))
	l = levels[hash%int64(len(levels))]
	return h, s, l
}

// Luma returns the perceived brightness of a hex colour in [0, 1].
// Unparseable colours are treated as black.
func Luma(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.RGB255()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// TextColor returns the label colour that stays legible on bg.
func TextColor(bg string) string {
	if Luma(bg) > 0.5 {
		return DarkText
	}
	return LightText
}

// bkdr is a BKDR string hash over UTF-16 code units. The running value is
// folded whenever it would overflow 2^53, so results stay well inside int64.
func bkdr(s string) int64 {
	const (
		seed  = 131
		seed2 = 137
		limit = 9007199254740991 / seed2
	)
	var hash int64
	for _, c := range utf16.Encode([]rune(s + "x")) {
		if hash > limit {
			hash /= seed2
		}
		hash = hash*seed + int64(c)
	}
	return hash
}
