package markup

import (
	"errors"
	"regexp"
	"testing"
)

var tagPattern = regexp.MustCompile(`<(/?)([a-z]+)[^>]*>`)

// balanced reports whether every opened tag in s is closed in LIFO order
func balanced(s string) bool {
	var stack []string
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		if m[1] == "" {
			stack = append(stack, m[2])
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1] != m[2] {
			return false
		}
		stack = stack[:len(stack)-1]
	}
	return len(stack) == 0
}

func TestParsePlainText(t *testing.T) {
	txt, err := Parse("Hello")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if txt.Len() != 5 {
		t.Errorf("Expected 5 visible chars, got %d", txt.Len())
	}
	if txt.Plain() != "Hello" {
		t.Errorf("Expected plain 'Hello', got %q", txt.Plain())
	}
	if len(txt.Spans) != 1 || txt.Spans[0].Slow || txt.Spans[0].Emphasis {
		t.Errorf("Expected one plain span, got %+v", txt.Spans)
	}
}

func TestParseSlowSpan(t *testing.T) {
	txt := MustParse("<slow>AB</slow>C")

	if txt.Len() != 3 {
		t.Fatalf("Expected 3 visible chars, got %d", txt.Len())
	}
	if !txt.At(0).Slow || !txt.At(1).Slow {
		t.Error("Expected A and B to be slow")
	}
	if txt.At(2).Slow {
		t.Error("Expected C to be normal speed")
	}
	if got := txt.Prefix(3); got != "<slow>AB</slow>C" {
		t.Errorf("Full prefix mismatch: %q", got)
	}
}

func TestParseCJKCountsRunes(t *testing.T) {
	txt := MustParse("我想寫，<strong>小說</strong>。")
	if txt.Len() != 7 {
		t.Errorf("Expected 7 visible chars, got %d", txt.Len())
	}
	if !txt.At(4).Emphasis || !txt.At(5).Emphasis {
		t.Error("Expected 小說 to carry emphasis")
	}
}

func TestPrefixAlwaysBalanced(t *testing.T) {
	sources := []string{
		"<slow>......</slow>難道你以為",
		"這樣的我<slow>...<strong>難道不能</slow>被稱作是一個『普通人』嗎？</strong>",
		"<slow><strong>獨一無二的「你」</strong></slow>嗎？",
		"a<b>b</b>c<em>d</em>",
	}

	for _, src := range sources {
		txt, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", src, err)
		}
		prevLen := -1
		for n := 0; n <= txt.Len(); n++ {
			out := txt.Prefix(n)
			if !balanced(out) {
				t.Errorf("Prefix(%d) of %q is unbalanced: %q", n, src, out)
			}
			plain := MustParse(out).Len()
			if plain != n {
				t.Errorf("Prefix(%d) of %q reveals %d chars", n, src, plain)
			}
			if plain < prevLen {
				t.Errorf("Prefix length decreased at n=%d", n)
			}
			prevLen = plain
		}
	}
}

func TestOverlappingTagsKeepAttributes(t *testing.T) {
	txt := MustParse("<slow>a<strong>b</slow>c</strong>")

	want := []Glyph{
		{Rune: 'a', Slow: true},
		{Rune: 'b', Slow: true, Emphasis: true},
		{Rune: 'c', Emphasis: true},
	}
	got := txt.Glyphs()
	if len(got) != len(want) {
		t.Fatalf("Expected %d glyphs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Glyph %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestPrefixClamps(t *testing.T) {
	txt := MustParse("abc")
	if txt.Prefix(-1) != "" {
		t.Error("Expected empty prefix for negative n")
	}
	if txt.Prefix(10) != "abc" {
		t.Errorf("Expected clamped prefix, got %q", txt.Prefix(10))
	}
}

func TestEntitiesAndBreaks(t *testing.T) {
	txt := MustParse("a&amp;b<br>c")
	if txt.Plain() != "a&b\nc" {
		t.Errorf("Unexpected plain text %q", txt.Plain())
	}
	if got := txt.Render(txt.Len(), DialectHTML); got != "a&amp;b<br>c" {
		t.Errorf("Unexpected HTML %q", got)
	}
}

func TestNoBreakSpaceEntity(t *testing.T) {
	txt := MustParse("10&nbsp;km")
	if txt.Plain() != "10\u00a0km" {
		t.Errorf("Expected U+00A0 in plain text, got %q", txt.Plain())
	}
	if txt.Len() != 5 {
		t.Errorf("Expected 5 visible characters, got %d", txt.Len())
	}
	if got := txt.Render(txt.Len(), DialectHTML); got != "10&nbsp;km" {
		t.Errorf("Expected entity kept in HTML, got %q", got)
	}
}

func TestRenderHTMLDialect(t *testing.T) {
	txt := MustParse("<slow>hi</slow> <strong>there</strong>")
	want := `<span class="slow">hi</span> <strong>there</strong>`
	if got := txt.Render(txt.Len(), DialectHTML); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"<slow>never closed",
		"stray</slow>",
		"<blink>x</blink>",
		"open <strong",
		"</br>",
	}

	for _, src := range cases {
		_, err := Parse(src)
		if err == nil {
			t.Errorf("Expected error for %q", src)
			continue
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Expected *SyntaxError for %q, got %T", src, err)
		}
	}
}
