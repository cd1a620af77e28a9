package tui

import (
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/vi-novel/markup"
)

// WrapGlyphs breaks glyphs into lines no wider than width cells
// Latin text wraps at spaces; wide (CJK) runes may break anywhere; '\n' forces a break
func WrapGlyphs(glyphs []markup.Glyph, width int) [][]markup.Glyph {
	if width <= 0 {
		return nil
	}

	var lines [][]markup.Glyph
	var line []markup.Glyph
	lineW := 0
	lastSpace := -1

	flush := func() {
		lines = append(lines, line)
		line = nil
		lineW = 0
		lastSpace = -1
	}

	for _, g := range glyphs {
		if g.Rune == '\n' {
			flush()
			continue
		}

		w := glyphWidth(g.Rune)
		if lineW+w > width {
			if lastSpace >= 0 && !breakable(g.Rune) {
				// Carry the partial word to the next line
				rest := append([]markup.Glyph(nil), line[lastSpace+1:]...)
				line = line[:lastSpace]
				flush()
				line = rest
				lineW = glyphsWidth(rest)
			} else {
				flush()
			}
		}

		if len(line) == 0 && breakable(g.Rune) && len(lines) > 0 {
			// No leading space on a wrapped line
			continue
		}
		if breakable(g.Rune) {
			lastSpace = len(line)
		}
		line = append(line, g)
		lineW += w
	}

	if len(line) > 0 || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

// breakable reports whether a line may wrap at r; a no-break space holds its neighbours together
func breakable(r rune) bool {
	return r != '\u00a0' && unicode.IsSpace(r)
}

func glyphWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		w = 1
	}
	return w
}

func glyphsWidth(gs []markup.Glyph) int {
	n := 0
	for _, g := range gs {
		n += glyphWidth(g.Rune)
	}
	return n
}
