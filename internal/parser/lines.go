package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
)

// glyph is one positioned character in top-down page coordinates.
type glyph struct {
	s        string
	x, w     float64
	baseline float64
	size     float64
	bold     bool
}

func (g glyph) box() doctree.BBox {
	return doctree.BBox{X0: g.x, Y0: g.baseline - g.size, X1: g.x + g.w, Y1: g.baseline}
}

// line is a run of glyphs sharing a baseline.
type line struct {
	baseline float64
	glyphs   []glyph
}

// baselineTolerance is how far apart two baselines may be and still count as one line.
func baselineTolerance(size float64) float64 {
	return math.Max(1.0, 0.35*size)
}

// columnGap is the horizontal gap, in multiples of the font size, that splits
// one baseline into two separate lines.
const columnGap = 3.0

// groupLines clusters glyphs by baseline, orders lines top to bottom and
// glyphs left to right. Glyphs keep their stream order when x is equal.
func groupLines(glyphs []glyph) []line {
	var lines []line
	for _, g := range glyphs {
		idx := -1
		for i := len(lines) - 1; i >= 0; i-- {
			if math.Abs(lines[i].baseline-g.baseline) <= baselineTolerance(g.size) {
				idx = i
				break
			}
		}
		if idx < 0 {
			lines = append(lines, line{baseline: g.baseline})
			idx = len(lines) - 1
		}
		lines[idx].glyphs = append(lines[idx].glyphs, g)
	}

	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].baseline < lines[b].baseline
	})

	var out []line
	for _, ln := range lines {
		sort.SliceStable(ln.glyphs, func(a, b int) bool {
			return ln.glyphs[a].x < ln.glyphs[b].x
		})
		out = append(out, splitColumns(ln)...)
	}
	return out
}

// splitColumns breaks a line wherever the gap between glyphs is wide enough
// to be a column gutter rather than a word space.
func splitColumns(ln line) []line {
	var out []line
	start := 0
	for i := 1; i < len(ln.glyphs); i++ {
		prev, cur := ln.glyphs[i-1], ln.glyphs[i]
		if cur.x-(prev.x+prev.w) > columnGap*math.Max(prev.size, cur.size) {
			out = append(out, line{baseline: ln.baseline, glyphs: ln.glyphs[start:i]})
			start = i
		}
	}
	return append(out, line{baseline: ln.baseline, glyphs: ln.glyphs[start:]})
}

// wordGap is the horizontal gap, in multiples of the font size, read as a space.
const wordGap = 0.2

// toRun assembles a line into a TextRun. ok is false for blank lines.
func (ln line) toRun(page int) (doctree.TextRun, bool) {
	var b strings.Builder
	run := doctree.TextRun{Page: page}
	for i, g := range ln.glyphs {
		if i == 0 {
			run.BBox = g.box()
		} else {
			prev := ln.glyphs[i-1]
			if g.x-(prev.x+prev.w) > wordGap*g.size && prev.s != " " && g.s != " " {
				b.WriteByte(' ')
			}
			run.BBox = run.BBox.Union(g.box())
		}
		b.WriteString(g.s)
		run.FontSize = math.Max(run.FontSize, g.size)
		run.Bold = run.Bold || g.bold
	}
	run.Text = cleanText(b.String())
	return run, run.Text != ""
}
