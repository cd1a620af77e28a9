package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Region is a clipped rectangle of the screen
type Region struct {
	screen     tcell.Screen
	X, Y, W, H int
}

// NewRegion covers the whole screen
func NewRegion(s tcell.Screen) Region {
	w, h := s.Size()
	return Region{screen: s, W: w, H: h}
}

// Sub returns a child region in local coordinates, clipped to r
func (r Region) Sub(x, y, w, h int) Region {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > r.W {
		w = r.W - x
	}
	if y+h > r.H {
		h = r.H - y
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Region{screen: r.screen, X: r.X + x, Y: r.Y + y, W: w, H: h}
}

// Inset shrinks the region by n on every side
func (r Region) Inset(n int) Region {
	return r.Sub(n, n, r.W-2*n, r.H-2*n)
}

// Cell draws one rune and returns the cells it occupies; clipped runes draw nothing
func (r Region) Cell(x, y int, ch rune, st tcell.Style) int {
	w := runewidth.RuneWidth(ch)
	if w == 0 {
		w = 1
	}
	if x < 0 || y < 0 || y >= r.H || x+w > r.W {
		return w
	}
	r.screen.SetContent(r.X+x, r.Y+y, ch, nil, st)
	return w
}

// Text draws s from x and returns the cells used
func (r Region) Text(x, y int, s string, st tcell.Style) int {
	start := x
	for _, ch := range s {
		x += r.Cell(x, y, ch, st)
	}
	return x - start
}

// TextCenter draws s centered on row y
func (r Region) TextCenter(y int, s string, st tcell.Style) {
	r.Text((r.W-runewidth.StringWidth(s))/2, y, s, st)
}

// Fill paints every cell with spaces in st
func (r Region) Fill(st tcell.Style) {
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			r.screen.SetContent(r.X+x, r.Y+y, ' ', nil, st)
		}
	}
}

// Box draws a rounded border with an optional title and returns the inner region
func (r Region) Box(title string, st, titleSt tcell.Style) Region {
	if r.W < 2 || r.H < 2 {
		return r.Sub(0, 0, 0, 0)
	}
	for x := 1; x < r.W-1; x++ {
		r.Cell(x, 0, '─', st)
		r.Cell(x, r.H-1, '─', st)
	}
	for y := 1; y < r.H-1; y++ {
		r.Cell(0, y, '│', st)
		r.Cell(r.W-1, y, '│', st)
	}
	r.Cell(0, 0, '╭', st)
	r.Cell(r.W-1, 0, '╮', st)
	r.Cell(0, r.H-1, '╰', st)
	r.Cell(r.W-1, r.H-1, '╯', st)

	if title != "" && r.W > 6 {
		r.Cell(2, 0, ' ', st)
		n := r.Sub(3, 0, r.W-6, 1).Text(0, 0, title, titleSt)
		r.Cell(3+n, 0, ' ', st)
	}
	return r.Inset(1)
}

// Progress draws a horizontal bar of width w filled to pct
func (r Region) Progress(x, y, w int, pct float64, fill, empty tcell.Style) {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(w))
	for i := 0; i < w; i++ {
		if i < filled {
			r.Cell(x+i, y, '█', fill)
		} else {
			r.Cell(x+i, y, '░', empty)
		}
	}
}
