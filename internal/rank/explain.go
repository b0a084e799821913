package rank

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/relevance"
)

type reason struct {
	terms []string
	text  string
}

// Explain builds a one-sentence explanation of why sec matters for req.
// Keyword lists are sorted, so the same inputs always give the same text.
func Explain(sec doctree.Section, score float64, req RelatedRequest) string {
	sectionText := sec.Heading + " " + sec.Text
	persona := relevance.Overlap(req.Persona, sectionText)
	job := relevance.Overlap(req.Job, sectionText)
	var current []string
	if req.CurrentSection != "" {
		current = relevance.Overlap(req.CurrentSection, sectionText)
	}

	// Candidates in preference order; the one with the most shared terms wins.
	var reasons []reason
	if len(persona) > 0 && len(job) > 0 {
		terms := union(persona, job)
		reasons = append(reasons, reason{terms, fmt.Sprintf(
			"addresses %s directly relevant to your role and objectives", list(terms, 3))})
	}
	if len(current) >= 2 {
		reasons = append(reasons, reason{current, fmt.Sprintf(
			"builds upon concepts like %s from your current reading", list(current, 2))})
	}
	if len(persona) > 0 {
		reasons = append(reasons, reason{persona, fmt.Sprintf(
			"contains insights about %s relevant to your %s role", list(persona, 2), strings.ToLower(req.Persona))})
	}
	if len(job) > 0 {
		reasons = append(reasons, reason{job, fmt.Sprintf(
			"provides information about %s for your task to %s", list(job, 2), strings.ToLower(req.Job))})
	}

	parts := []string{"contains complementary information that may support your understanding"}
	if len(reasons) > 0 {
		best := reasons[0]
		for _, r := range reasons[1:] {
			if len(r.terms) > len(best.terms) {
				best = r
			}
		}
		parts[0] = best.text
	}
	if req.CurrentSection != "" && sec.Document != "" {
		parts = append(parts, "from "+sec.Document)
	}
	switch {
	case score > 0.7:
		parts = append(parts, "with high contextual relevance")
	case score > 0.5:
		parts = append(parts, "with moderate contextual relevance")
	}
	return sentence(strings.Join(parts, " "))
}

func union(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		set[t] = true
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func list(terms []string, n int) string {
	if len(terms) > n {
		terms = terms[:n]
	}
	return strings.Join(terms, ", ")
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
