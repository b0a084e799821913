package insight

import (
	"sort"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
)

// Page significance thresholds.
const (
	minSignificantWords = 50
	minSignificantChars = 200
	minContentWords     = 30
	maxBoilerplateHits  = 2
)

var boilerplateIndicators = []string{
	"table of contents", "copyright", "all rights reserved", "page ",
	"chapter ", "references", "bibliography", "index", "appendix",
}

// PageContent is the text of one page and whether it carries enough
// content to generate facts from.
type PageContent struct {
	Page        int    `json:"page_number"`
	Text        string `json:"text"`
	WordCount   int    `json:"word_count"`
	Significant bool   `json:"has_significant_content"`
}

// AnalyzePages joins runs per page in reading order and flags significant
// pages. Pages without runs are omitted.
func AnalyzePages(runs []doctree.TextRun) []PageContent {
	byPage := make(map[int][]string)
	for _, r := range runs {
		byPage[r.Page] = append(byPage[r.Page], r.Text)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	out := make([]PageContent, 0, len(pages))
	for _, p := range pages {
		text := strings.Join(byPage[p], " ")
		words := len(strings.Fields(text))
		out = append(out, PageContent{
			Page:        p,
			Text:        text,
			WordCount:   words,
			Significant: words > minSignificantWords && len(text) > minSignificantChars && !isBoilerplate(text, words),
		})
	}
	return out
}

func isBoilerplate(text string, words int) bool {
	lower := strings.ToLower(text)
	hits := 0
	for _, ind := range boilerplateIndicators {
		if strings.Contains(lower, ind) {
			hits++
		}
	}
	return hits > maxBoilerplateHits || words < minContentWords
}

// Significant filters pages down to those worth generating facts for.
func Significant(pages []PageContent) []PageContent {
	var out []PageContent
	for _, p := range pages {
		if p.Significant {
			out = append(out, p)
		}
	}
	return out
}
