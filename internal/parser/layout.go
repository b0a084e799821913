package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsense/internal/doctree"
)

// Formats without geometry are set on virtual US Letter pages so they go
// through the same classifier as PDF lines.
const (
	pageTopMargin    = 72.0
	pageBottomMargin = 720.0
	leftMargin       = 72.0
	bodySize         = 11.0
	lineSpacing      = 1.2
	paragraphGap     = 8.0
	wrapColumns      = 90
)

// headingSizes is indexed by heading level; index 0 is unused.
var headingSizes = [...]float64{bodySize, 24, 20, 16, 14, 13, 12}

type layout struct {
	runs []doctree.TextRun
	page int
	y    float64 // baseline of the last placed line
}

func newLayout() *layout {
	return &layout{page: 1, y: pageTopMargin}
}

// heading places a bold line sized by level (1 largest).
func (l *layout) heading(text string, level int) {
	text = cleanText(text)
	if text == "" {
		return
	}
	level = max(1, min(level, len(headingSizes)-1))
	size := headingSizes[level]
	l.place(text, size, true, size)
}

// paragraph wraps text into body lines.
func (l *layout) paragraph(text string) {
	gap := paragraphGap
	for _, ln := range wrap(cleanText(text), wrapColumns) {
		l.place(ln, bodySize, false, gap)
		gap = 0
	}
}

// bullet places a list item with a leading marker.
func (l *layout) bullet(text string) {
	if text = cleanText(text); text != "" {
		l.paragraph("• " + text)
	}
}

func (l *layout) place(text string, size float64, bold bool, gapBefore float64) {
	baseline := l.y + gapBefore + size*lineSpacing
	if baseline > pageBottomMargin && len(l.runs) > 0 {
		l.page++
		baseline = pageTopMargin + size*lineSpacing
	}
	width := float64(utf8.RuneCountInString(text)) * size * 0.5
	l.runs = append(l.runs, doctree.TextRun{
		Text:     text,
		Page:     l.page,
		BBox:     doctree.BBox{X0: leftMargin, Y0: baseline - size, X1: leftMargin + width, Y1: baseline},
		FontSize: size,
		Bold:     bold,
	})
	l.y = baseline
}

// wrap breaks text into lines of at most cols runes on word boundaries.
// Words longer than cols get a line of their own.
func wrap(text string, cols int) []string {
	var out []string
	var cur strings.Builder
	n := 0
	for _, w := range strings.Fields(text) {
		wl := utf8.RuneCountInString(w)
		if n > 0 && n+1+wl > cols {
			out = append(out, cur.String())
			cur.Reset()
			n = 0
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wl
	}
	if n > 0 {
		out = append(out, cur.String())
	}
	return out
}
