// Package outline tags extracted text runs as TITLE, HEADING or BODY and
// derives a leveled outline from the headings.
package outline

import (
	"math"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docsense/internal/doctree"
)

// titleCapsRatio is the uppercase ratio a page-1 line must exceed to be the title.
const titleCapsRatio = 0.7

// CapsRatio returns the share of letters in text that are uppercase.
func CapsRatio(text string) float64 {
	letters, upper := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// roundSize rounds a font size to two decimals so near-identical sizes share a rank.
func roundSize(size float64) float64 {
	return math.Round(size*100) / 100
}

// RankFontSizes maps each distinct rounded font size to its rank, 0 being the largest.
func RankFontSizes(runs []doctree.TextRun) map[float64]int {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, r := range runs {
		sz := roundSize(r.FontSize)
		if !seen[sz] {
			seen[sz] = true
			sizes = append(sizes, sz)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	ranks := make(map[float64]int, len(sizes))
	for i, sz := range sizes {
		ranks[sz] = i
	}
	return ranks
}

// BodySize returns the rounded font size that carries the most characters.
// Ties go to the smaller size. ok is false when the document uses a single
// size, since body and headings cannot be told apart by size then.
func BodySize(runs []doctree.TextRun) (size float64, ok bool) {
	chars := make(map[float64]int)
	for _, r := range runs {
		chars[roundSize(r.FontSize)] += utf8.RuneCountInString(r.Text)
	}
	if len(chars) < 2 {
		return 0, false
	}
	best := -1
	for sz, n := range chars {
		if n > best || (n == best && sz < size) {
			size, best = sz, n
		}
	}
	return size, true
}

// Classify assigns caps ratio, font rank and tag to every run in place and
// returns the title run, or nil when no line qualifies. Ranks are computed
// over the whole document before any line is scored.
func Classify(runs []doctree.TextRun) *doctree.TextRun {
	if len(runs) == 0 {
		return nil
	}

	ranks := RankFontSizes(runs)
	bodySize, hasBody := BodySize(runs)

	title := -1
	for i := range runs {
		r := &runs[i]
		r.CapsRatio = CapsRatio(r.Text)
		r.FontRank = ranks[roundSize(r.FontSize)]

		gap := NoGap
		if i > 0 && runs[i-1].Page == r.Page {
			gap = r.BBox.Y0 - runs[i-1].BBox.Y1
		}

		sig := Signals{
			Text:       r.Text,
			CapsRatio:  r.CapsRatio,
			FontRank:   r.FontRank,
			Bold:       r.Bold,
			GapAbove:   gap,
			AtBodySize: hasBody && roundSize(r.FontSize) == bodySize,
		}
		if Score(sig) >= HeadingThreshold {
			r.Tag = doctree.TagHeading
		} else {
			r.Tag = doctree.TagBody
		}

		if r.Page == 1 && r.CapsRatio > titleCapsRatio && (title < 0 || r.FontSize > runs[title].FontSize) {
			title = i
		}
	}

	if title < 0 {
		return nil
	}
	runs[title].Tag = doctree.TagTitle
	return &runs[title]
}
