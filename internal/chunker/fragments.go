// Package chunker splits section text into scoreable fragments and trims
// text to a token budget.
package chunker

import (
	"strings"
	"unicode"
)

// bulletGlyphs are list markers stripped from the start of a fragment.
const bulletGlyphs = "•-*●◦"

// Fragments splits text after sentence-ending punctuation that is followed
// by whitespace, at line breaks and at bullet glyphs. Leading bullet markers
// are stripped and empty fragments are dropped. Terminal punctuation stays
// with its sentence.
func Fragments(text string) []string {
	var out []string
	var current strings.Builder

	emit := func() {
		if f := StripBullet(current.String()); f != "" {
			out = append(out, f)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\r' || r == '\n' || r == '•':
			emit()
		case (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]):
			current.WriteRune(r)
			emit()
			// Swallow the whitespace run that followed the punctuation.
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) && runes[i+1] != '\n' && runes[i+1] != '\r' {
				i++
			}
		default:
			current.WriteRune(r)
		}
	}
	emit()
	return out
}

// StripBullet removes one leading bullet glyph and surrounding space.
func StripBullet(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if strings.ContainsRune(bulletGlyphs, []rune(s)[0]) {
		s = strings.TrimSpace(string([]rune(s)[1:]))
	}
	return s
}

// Truncate cuts text to roughly maxTokens, ending on a word boundary.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}
	words := strings.Fields(text)
	n := int(float64(maxTokens) / 1.33)
	if n < 1 {
		n = 1
	}
	if n > len(words) {
		n = len(words)
	}
	return strings.Join(words[:n], " ")
}
