// Package markup parses dialogue rich text into a flat span model
// Supported inline tags: <strong>/<b>/<em> (emphasis), <slow> (slow typing), <br> (line break)
// Tags act as attribute toggles, so overlapping ranges such as
// "<slow>a<strong>b</slow>c</strong>" are accepted and rendered back as balanced markup
package markup

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Glyph is one visible character with its inline attributes
type Glyph struct {
	Rune     rune
	Emphasis bool
	Slow     bool
}

// Span is a maximal run of glyphs sharing the same attributes
type Span struct {
	Text     string
	Emphasis bool
	Slow     bool
}

// Text is the parsed form of a dialogue line
// Source is kept verbatim so a fully revealed line can be shown exactly as authored
type Text struct {
	Source string
	Spans  []Span
	glyphs []Glyph
}

// Dialect selects the tag vocabulary used when rendering a prefix
type Dialect uint8

const (
	// DialectMarkup renders <strong> and <slow>, matching the authoring format
	DialectMarkup Dialect = iota
	// DialectHTML renders <strong> and <span class="slow">, newlines as <br>
	DialectHTML
)

// SyntaxError reports a malformed tag at a byte offset of the source
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("markup: offset %d: %s", e.Offset, e.Msg)
}

var entities = map[string]rune{
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"quot": '"',
	"apos": '\'',
	"#39":  '\'',
	"nbsp": '\u00a0',
}

// Parse converts source markup into a Text
func Parse(src string) (*Text, error) {
	t := &Text{Source: src}

	var emphasis, slow int
	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case '<':
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated tag"}
			}
			raw := strings.TrimSpace(src[i+1 : i+end])
			closing := strings.HasPrefix(raw, "/")
			name := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "/"), "/")))

			var depth *int
			switch name {
			case "strong", "b", "em":
				depth = &emphasis
			case "slow":
				depth = &slow
			case "br":
				if closing {
					return nil, &SyntaxError{Offset: i, Msg: "closing <br>"}
				}
				t.push('\n', emphasis > 0, slow > 0)
				i += end + 1
				continue
			default:
				return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unknown tag %q", name)}
			}

			if closing {
				if *depth == 0 {
					return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("stray </%s>", name)}
				}
				*depth--
			} else {
				*depth++
			}
			i += end + 1

		case '&':
			end := strings.IndexByte(src[i:], ';')
			if end > 1 && end <= 6 {
				if r, ok := entities[src[i+1:i+end]]; ok {
					t.push(r, emphasis > 0, slow > 0)
					i += end + 1
					continue
				}
			}
			t.push('&', emphasis > 0, slow > 0)
			i++

		default:
			r, size := utf8.DecodeRuneInString(src[i:])
			t.push(r, emphasis > 0, slow > 0)
			i += size
		}
	}

	if emphasis > 0 || slow > 0 {
		return nil, &SyntaxError{Offset: len(src), Msg: "unclosed tag at end of text"}
	}

	t.Spans = spansOf(t.glyphs)
	return t, nil
}

// MustParse is Parse for literals known to be valid; it panics on error
func MustParse(src string) *Text {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Text) push(r rune, emphasis, slow bool) {
	t.glyphs = append(t.glyphs, Glyph{Rune: r, Emphasis: emphasis, Slow: slow})
}

// Len returns the number of visible characters
func (t *Text) Len() int {
	return len(t.glyphs)
}

// At returns the visible character at index i
func (t *Text) At(i int) Glyph {
	return t.glyphs[i]
}

// Glyphs returns a copy of the visible characters
func (t *Text) Glyphs() []Glyph {
	out := make([]Glyph, len(t.glyphs))
	copy(out, t.glyphs)
	return out
}

// Plain returns the visible text without any markup
func (t *Text) Plain() string {
	var b strings.Builder
	for _, g := range t.glyphs {
		b.WriteRune(g.Rune)
	}
	return b.String()
}

// Prefix renders the first n visible characters as balanced markup
// n is clamped to [0, Len()]
func (t *Text) Prefix(n int) string {
	return t.Render(n, DialectMarkup)
}

// Render renders the first n visible characters in the given dialect
// Every opened tag is closed before the output ends
func (t *Text) Render(n int, d Dialect) string {
	if n <= 0 {
		return ""
	}
	if n > len(t.glyphs) {
		n = len(t.glyphs)
	}

	var b strings.Builder
	for _, sp := range spansOf(t.glyphs[:n]) {
		if sp.Slow {
			b.WriteString(openSlow(d))
		}
		if sp.Emphasis {
			b.WriteString("<strong>")
		}
		writeEscaped(&b, sp.Text, d)
		if sp.Emphasis {
			b.WriteString("</strong>")
		}
		if sp.Slow {
			b.WriteString(closeSlow(d))
		}
	}
	return b.String()
}

func openSlow(d Dialect) string {
	if d == DialectHTML {
		return `<span class="slow">`
	}
	return "<slow>"
}

func closeSlow(d Dialect) string {
	if d == DialectHTML {
		return "</span>"
	}
	return "</slow>"
}

func writeEscaped(b *strings.Builder, s string, d Dialect) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\u00a0':
			b.WriteString("&nbsp;")
		case '\n':
			if d == DialectHTML {
				b.WriteString("<br>")
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func spansOf(glyphs []Glyph) []Span {
	var spans []Span
	var cur strings.Builder
	var attrs Glyph
	for i, g := range glyphs {
		if i > 0 && (g.Emphasis != attrs.Emphasis || g.Slow != attrs.Slow) {
			spans = append(spans, Span{Text: cur.String(), Emphasis: attrs.Emphasis, Slow: attrs.Slow})
			cur.Reset()
		}
		attrs = g
		cur.WriteRune(g.Rune)
	}
	if cur.Len() > 0 {
		spans = append(spans, Span{Text: cur.String(), Emphasis: attrs.Emphasis, Slow: attrs.Slow})
	}
	return spans
}
