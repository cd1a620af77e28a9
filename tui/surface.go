// Package tui renders the reading screen on a tcell terminal
package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/markup"
	"github.com/lixenwraith/vi-novel/script"
)

// Layout constants
const (
	boxHeight     = 8
	boxMarginX    = 2
	choiceGap     = 3
	typingCursor  = '▌'
	idleIndicator = '▼'
)

// Variant names with dedicated styling
const (
	VariantShout = "shout-effect"
)

const (
	holdLabel = "keep holding Enter to exit"
	holdBarW  = 12
)

var holdLabelW = StringWidth(holdLabel)

// Surface is the terminal presentation surface
// Render calls record the latest instruction and redraw the whole screen
type Surface struct {
	mu     sync.Mutex
	screen tcell.Screen
	theme  Theme

	dialogue *engine.DialogueFrame
	choices  *engine.ChoiceFrame
	effects  map[script.EffectKind]engine.EffectFrame
	status   string

	// hold is the exit long-press progress; negative when hidden
	hold float64
}

// NewSurface creates a surface drawing on screen
func NewSurface(screen tcell.Screen, theme Theme) *Surface {
	return &Surface{
		screen:  screen,
		theme:   theme,
		effects: make(map[script.EffectKind]engine.EffectFrame),
		hold:    -1,
	}
}

func (s *Surface) RenderDialogue(f engine.DialogueFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogue = &f
	s.choices = nil
	s.draw()
}

func (s *Surface) RenderChoices(f engine.ChoiceFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices = &f
	s.dialogue = f.Prompt
	s.draw()
}

func (s *Surface) RenderEffect(f engine.EffectFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Done {
		delete(s.effects, f.Kind)
	} else {
		s.effects[f.Kind] = f
	}
	s.draw()
}

// SetStatus shows msg on the top row; empty clears it
func (s *Surface) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
	s.draw()
}

// SetHold shows the exit hold progress in [0,1] on the top row; visible false hides it
// Redraws only when the shown value changes
func (s *Surface) SetHold(progress float64, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !visible {
		progress = -1
	}
	if progress == s.hold {
		return
	}
	s.hold = progress
	s.draw()
}

// ClearEffects drops overlays whose end frame will never arrive
func (s *Surface) ClearEffects() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = make(map[script.EffectKind]engine.EffectFrame)
	s.draw()
}

// Redraw repaints after a resize
func (s *Surface) Redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Sync()
	s.draw()
}

func (s *Surface) draw() {
	root := NewRegion(s.screen)
	root.Fill(s.theme.base(s.theme.Text))

	if s.status != "" {
		root.Text(1, 0, s.status, s.theme.base(s.theme.Dim))
	}
	if s.hold >= 0 {
		s.drawHold(root)
	}

	boxH := boxHeight
	if boxH > root.H-1 {
		boxH = root.H - 1
	}
	box := root.Sub(boxMarginX, root.H-boxH, root.W-2*boxMarginX, boxH)

	if s.dialogue != nil {
		s.drawDialogue(box, *s.dialogue)
	}
	if s.choices != nil {
		s.drawChoices(root, root.H-boxH-2, *s.choices)
	}
	if f, ok := s.effects[script.EffectParticleReveal]; ok {
		s.drawParticles(box.Inset(1), f)
	}
	if f, ok := s.effects[script.EffectInsertCutaway]; ok {
		s.drawCutaway(root, f)
	}

	s.screen.Show()
}

func (s *Surface) drawHold(root Region) {
	x := root.W - holdLabelW - holdBarW - 2
	if x < 0 {
		x = 0
	}
	root.Text(x, 0, holdLabel, s.theme.base(s.theme.Emphasis))
	root.Progress(x+holdLabelW+1, 0, holdBarW, s.hold,
		s.theme.base(s.theme.Emphasis), s.theme.base(s.theme.Dim))
}

// fadeAmount is how far the dialogue has faded toward the background
func (s *Surface) fadeAmount() float64 {
	if f, ok := s.effects[script.EffectFadeOut]; ok {
		return f.Progress
	}
	return 0
}

func (s *Surface) glyphStyle(g markup.Glyph, variant string) tcell.Style {
	t := s.theme
	st := t.base(t.Text)
	switch {
	case variant == VariantShout:
		st = t.base(t.Shout).Bold(true)
	case g.Emphasis:
		st = t.base(t.Emphasis).Bold(true)
	case g.Slow:
		st = t.base(t.Slow).Italic(true)
	}
	if g.Emphasis && g.Slow {
		st = st.Italic(true)
	}
	return t.fade(st, s.fadeAmount())
}

func (s *Surface) drawDialogue(box Region, f engine.DialogueFrame) {
	t := s.theme
	fade := s.fadeAmount()
	inner := box.Box(f.Speaker, t.fade(t.base(t.Border), fade), t.fade(t.base(t.Speaker).Bold(true), fade))
	if inner.W <= 0 || inner.H <= 0 {
		return
	}

	glyphs := visibleGlyphs(f)
	lines := WrapGlyphs(glyphs, inner.W-1)

	// Keep the tail in view when a line outgrows the box
	if len(lines) > inner.H {
		lines = lines[len(lines)-inner.H:]
	}

	x, y := 0, 0
	for i, line := range lines {
		x = 0
		y = i
		for _, g := range line {
			x += inner.Cell(x, y, g.Rune, s.glyphStyle(g, f.Variant))
		}
	}

	switch {
	case f.Typing:
		inner.Cell(x, y, typingCursor, t.fade(t.base(t.Dim), fade))
	case s.choices == nil:
		box.Cell(box.W-3, box.H-1, idleIndicator, t.fade(t.base(t.Speaker), fade))
	}
}

// visibleGlyphs returns the revealed prefix of the frame's text
func visibleGlyphs(f engine.DialogueFrame) []markup.Glyph {
	text := f.Markup
	if text == nil {
		parsed, err := markup.Parse(f.Text)
		if err != nil {
			return nil
		}
		text = parsed
	}
	glyphs := text.Glyphs()
	n := f.Revealed
	if n > len(glyphs) {
		n = len(glyphs)
	}
	if n < 0 {
		n = 0
	}
	return glyphs[:n]
}

func (s *Surface) drawChoices(root Region, y int, f engine.ChoiceFrame) {
	t := s.theme
	if y < 0 || len(f.Labels) == 0 {
		return
	}

	labels := make([]string, len(f.Labels))
	total := 0
	for i, l := range f.Labels {
		labels[i] = fmt.Sprintf(" %d %s ", i+1, l)
		total += StringWidth(labels[i])
	}
	total += choiceGap * (len(labels) - 1)

	x := (root.W - total) / 2
	if x < 0 {
		x = 0
	}
	for i, l := range labels {
		st := tcell.StyleDefault.Foreground(t.ButtonFg).Background(t.ButtonBg)
		if i == f.Highlight {
			st = tcell.StyleDefault.Foreground(t.ButtonFocusFg).Background(t.ButtonFocusBg).Bold(true)
		}
		x += root.Text(x, y, l, st) + choiceGap
	}
}

// drawParticles scatters sparks over the text, thinning as the reveal completes
func (s *Surface) drawParticles(area Region, f engine.EffectFrame) {
	if area.W <= 0 || area.H <= 0 {
		return
	}
	count := int((1 - f.Progress) * float64(area.W*area.H) / 3)
	sparks := []rune{'✦', '·', '*', '˙'}
	st := s.theme.base(s.theme.Particle)

	seed := uint32(f.Progress*1000) + 1
	for i := 0; i < count; i++ {
		seed = seed*1664525 + 1013904223
		x := int(seed>>8) % area.W
		seed = seed*1664525 + 1013904223
		y := int(seed>>8) % area.H
		area.Cell(x, y, sparks[int(seed>>4)%len(sparks)], st)
	}
}

var cupArt = []string{
	"    ( (    ",
	"     ) )   ",
	"  ........ ",
	"  |      |]",
	"  \\      / ",
	"   `----'  ",
}

// drawCutaway overlays the inserted scene with its progress
func (s *Surface) drawCutaway(root Region, f engine.EffectFrame) {
	t := s.theme
	w, h := 30, len(cupArt)+4
	modal := root.Sub((root.W-w)/2, (root.H-h)/2-2, w, h)
	modal.Fill(t.base(t.Cutaway))
	inner := modal.Box("", t.base(t.Cutaway), t.base(t.Cutaway))

	for i, line := range cupArt {
		inner.TextCenter(i, line, t.base(t.Cutaway))
	}
	inner.Progress(1, inner.H-1, inner.W-2, f.Progress, t.base(t.Cutaway), t.base(t.Dim))
}

// StringWidth returns the display width of s in cells
func StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += glyphWidth(r)
	}
	return n
}
