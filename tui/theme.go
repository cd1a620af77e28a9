package tui

import "github.com/gdamore/tcell/v2"

// Theme holds the palette of the reading screen
// Colors are explicit RGB so fades can interpolate them
type Theme struct {
	Background tcell.Color
	Text       tcell.Color
	Emphasis   tcell.Color
	Slow       tcell.Color
	Shout      tcell.Color
	Border     tcell.Color
	Speaker    tcell.Color
	Dim        tcell.Color

	ButtonFg      tcell.Color
	ButtonBg      tcell.Color
	ButtonFocusFg tcell.Color
	ButtonFocusBg tcell.Color

	Particle tcell.Color
	Cutaway  tcell.Color
}

// DefaultTheme returns the standard dark palette
func DefaultTheme() Theme {
	return Theme{
		Background: tcell.NewRGBColor(18, 18, 26),
		Text:       tcell.NewRGBColor(210, 210, 215),
		Emphasis:   tcell.NewRGBColor(255, 220, 140),
		Slow:       tcell.NewRGBColor(150, 170, 210),
		Shout:      tcell.NewRGBColor(255, 110, 90),
		Border:     tcell.NewRGBColor(80, 100, 140),
		Speaker:    tcell.NewRGBColor(100, 200, 220),
		Dim:        tcell.NewRGBColor(100, 100, 110),

		ButtonFg:      tcell.NewRGBColor(200, 200, 200),
		ButtonBg:      tcell.NewRGBColor(50, 50, 60),
		ButtonFocusFg: tcell.NewRGBColor(255, 255, 255),
		ButtonFocusBg: tcell.NewRGBColor(60, 80, 120),

		Particle: tcell.NewRGBColor(240, 200, 255),
		Cutaway:  tcell.NewRGBColor(200, 150, 100),
	}
}

// base returns the plain style on the background
func (t Theme) base(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg).Background(t.Background)
}

// fade blends a style's foreground toward the background by amount in [0,1]
func (t Theme) fade(st tcell.Style, amount float64) tcell.Style {
	if amount <= 0 {
		return st
	}
	if amount > 1 {
		amount = 1
	}
	fg, _, _ := st.Decompose()
	return st.Foreground(blend(fg, t.Background, amount))
}

// blend interpolates between two RGB colors; non-RGB colors pass through
func blend(from, to tcell.Color, amount float64) tcell.Color {
	fr, fg, fb := from.RGB()
	tr, tg, tb := to.RGB()
	if fr < 0 || tr < 0 {
		return from
	}
	mix := func(a, b int32) int32 {
		return a + int32(float64(b-a)*amount)
	}
	return tcell.NewRGBColor(mix(fr, tr), mix(fg, tg), mix(fb, tb))
}
