package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeadingThreshold is the minimum score for a line to be tagged HEADING.
const HeadingThreshold = 1.0

// gapThreshold is the base vertical gap (points) used by the gap tiers.
const gapThreshold = 3.0

// NoGap marks the first line on a page, which has no line above it.
const NoGap = 9999.0

// Signals is everything the scorer looks at for one line.
type Signals struct {
	Text      string
	CapsRatio float64
	FontRank  int
	Bold      bool
	GapAbove  float64
	// AtBodySize is set when the line uses the document's dominant body
	// font size and the document has more than one font size.
	AtBodySize bool
}

// WordCount returns the number of whitespace-separated words in the line.
func (s Signals) WordCount() int {
	return len(strings.Fields(s.Text))
}

// signal is one additive term of the heading score.
type signal struct {
	name string
	fn   func(Signals) float64
}

var signals = []signal{
	{"case", caseScore},
	{"font_rank", fontRankScore},
	{"bold", boldScore},
	{"word_count", wordCountScore},
	{"caps", capsScore},
	{"pattern", patternScore},
	{"keyword", keywordScore},
	{"trailing", trailingScore},
	{"all_caps", allCapsScore},
	{"punctuation", punctuationScore},
	{"gap", gapScore},
	{"length", lengthScore},
	{"complexity", complexityScore},
	{"body_size", bodySizeScore},
	{"sentence", sentenceScore},
}

// bulletScore is returned for bullet lines instead of the signal sum.
const bulletScore = -5.0

// Score returns how heading-like a line is. Bullet lines short-circuit to a
// fixed penalty so no combination of other signals can lift them.
func Score(s Signals) float64 {
	if IsBullet(s.Text) {
		return bulletScore
	}
	total := 0.0
	for _, sig := range signals {
		total += sig.fn(s)
	}
	return total
}

// Breakdown returns each signal's contribution, keyed by signal name.
func Breakdown(s Signals) map[string]float64 {
	out := make(map[string]float64, len(signals)+1)
	if IsBullet(s.Text) {
		out["bullet"] = bulletScore
		return out
	}
	for _, sig := range signals {
		if v := sig.fn(s); v != 0 {
			out[sig.name] = v
		}
	}
	return out
}

var bulletPrefixes = []string{"•", "-", "–", "*", "·", "●", "◦"}

var numberedBullet = regexp.MustCompile(`^\d+[.)]\s+`)

// IsBullet reports whether the line starts with a list marker.
func IsBullet(text string) bool {
	t := strings.TrimLeftFunc(text, unicode.IsSpace)
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	// "o" is only a marker when used as a glyph, not as the start of a word.
	if len(t) > 1 && t[0] == 'o' && (t[1] == ' ' || t[1] == '\t') {
		return true
	}
	return numberedBullet.MatchString(t)
}

var prepositions = []string{"in ", "on ", "at ", "for ", "of ", "to ", "by "}

func caseScore(s Signals) float64 {
	score := 0.0
	if r, _ := utf8.DecodeRuneInString(s.Text); unicode.IsLower(r) {
		score -= 1.0
	}
	lower := strings.ToLower(s.Text)
	for _, p := range prepositions {
		if strings.HasPrefix(lower, p) {
			score -= 0.5
			break
		}
	}
	return score
}

var rankBonus = [...]float64{2.0, 1.5, 1.2, 1.0, 0.8, 0.5, 0.4}

func fontRankScore(s Signals) float64 {
	if s.FontRank < 0 || s.FontRank >= len(rankBonus) {
		return 0
	}
	return rankBonus[s.FontRank]
}

func boldScore(s Signals) float64 {
	if s.Bold {
		return 1.5
	}
	return 0
}

func wordCountScore(s Signals) float64 {
	w := s.WordCount()
	score := 0.0
	if w <= 20 {
		score += 1.5
	}
	if w <= 5 {
		score += 1.0
	}
	if w <= 8 {
		score += 0.5
	}
	return score
}

func capsScore(s Signals) float64 {
	switch {
	case s.CapsRatio >= 0.8:
		return 1.2
	case s.CapsRatio >= 0.2:
		return 0.8
	case s.CapsRatio >= 0.1:
		return 0.3
	}
	return 0
}

var (
	numberedPrefix = regexp.MustCompile(`^\d+\.?\d*\.?\s`)
	letteredPrefix = regexp.MustCompile(`^([A-Z]\.?|[a-z]\))\s`)
	romanPrefix    = regexp.MustCompile(`^[IVX]+\.?\s`)
	parenPrefix    = regexp.MustCompile(`^\([a-zA-Z0-9]+\)`)
)

func patternScore(s Signals) float64 {
	switch {
	case numberedPrefix.MatchString(s.Text):
		return 1.5
	case letteredPrefix.MatchString(s.Text):
		return 1.2
	case romanPrefix.MatchString(s.Text):
		return 1.2
	case parenPrefix.MatchString(s.Text):
		return 1.0
	}
	return 0
}

var headingWords = []string{
	"chapter", "section", "introduction", "conclusion", "summary",
	"overview", "background", "methodology", "results", "discussion",
	"abstract", "appendix", "references", "bibliography", "executive",
	"table of contents", "contents", "index", "glossary", "preface",
	"acknowledgments", "foreword", "part", "volume", "book", "unit",
	"lesson", "exercise", "problem", "solution", "example", "case",
	"study", "analysis", "evaluation", "assessment", "review",
	"objective", "goal", "purpose", "scope", "definition", "concept",
	"theory", "principle", "method", "approach", "technique", "process",
	"procedure", "step", "phase", "stage", "level", "degree", "grade",
	"key", "main", "primary", "secondary", "important", "critical",
	"essential", "fundamental", "basic", "advanced", "final", "initial",
}

func keywordScore(s Signals) float64 {
	lower := strings.ToLower(s.Text)
	for _, w := range headingWords {
		if strings.Contains(lower, w) {
			return 1.0
		}
	}
	return 0
}

func trailingScore(s Signals) float64 {
	w := s.WordCount()
	score := 0.0
	if strings.HasSuffix(s.Text, "?") && w <= 12 {
		score += 0.8
	}
	if strings.HasSuffix(s.Text, ":") && w <= 10 {
		score += 0.8
	}
	return score
}

func allCapsScore(s Signals) float64 {
	if s.CapsRatio >= 0.9 && s.WordCount() <= 6 {
		return 1.0
	}
	return 0
}

const punctuation = ",.;:!?()[]{}'\""

func punctuationScore(s Signals) float64 {
	n := 0
	for _, r := range s.Text {
		if strings.ContainsRune(punctuation, r) {
			n++
		}
	}
	switch {
	case n >= 4:
		return -0.3
	case n == 0 && s.WordCount() > 1:
		return 0.5
	}
	return 0
}

func gapScore(s Signals) float64 {
	switch {
	case s.GapAbove > gapThreshold*2:
		return 1.0
	case s.GapAbove > gapThreshold:
		return 0.7
	case s.GapAbove > gapThreshold/2:
		return 0.4
	}
	return 0
}

func lengthScore(s Signals) float64 {
	n := utf8.RuneCountInString(s.Text)
	switch {
	case n < 3:
		return -1.5
	case n <= 80:
		return 0.5
	case n > 150:
		return -0.8
	}
	return 0
}

func complexityScore(s Signals) float64 {
	if strings.Count(s.Text, ".") <= 1 && !strings.HasSuffix(s.Text, ".") && s.WordCount() >= 2 {
		return 0.3
	}
	return 0
}

// Body-size penalties. A non-bold line in the running-text size only
// stays in contention when it carries a structural cue; otherwise the
// penalty outweighs every positive signal combined.
const (
	bodySizePenalty      = -3.5
	bodySizeLongPenalty  = -5.0
	bodySizePlainPenalty = -10.0
)

// bodySizeScore keeps paragraph text in the body size out of the outline,
// so a page of one styled heading over plain sentences yields exactly one
// heading. It rejects non-bold body-size lines with no numbering, no
// lettered or roman prefix, no caps styling (ratio >= 0.8) and no trailing
// ":" or "?". Keywords and paragraph gaps alone never lift such a line.
// Cued lines of more than 8 words are wrapped prose and are pulled further.
func bodySizeScore(s Signals) float64 {
	if !s.AtBodySize || s.Bold {
		return 0
	}
	if !hasStructuralCue(s) {
		return bodySizePlainPenalty
	}
	if s.WordCount() > 8 {
		return bodySizeLongPenalty
	}
	return bodySizePenalty
}

// hasStructuralCue reports whether a line is shaped like a heading
// independently of its font.
func hasStructuralCue(s Signals) bool {
	return patternScore(s) > 0 ||
		s.CapsRatio >= 0.8 ||
		strings.HasSuffix(s.Text, ":") ||
		strings.HasSuffix(s.Text, "?")
}

// sentenceScore rejects lines shaped like prose sentences: two or more
// words closed by a period.
func sentenceScore(s Signals) float64 {
	if strings.HasSuffix(s.Text, ".") && s.WordCount() >= 2 {
		return -1.0
	}
	return 0
}
