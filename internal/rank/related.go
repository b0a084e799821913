package rank

import (
	"sort"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/relevance"
)

// DefaultRelatedLimit is the number of related sections returned when none is given.
const DefaultRelatedLimit = 3

const (
	sameDocumentBoost = 1.3
	topRankBoost      = 1.2
	keySectionBoost   = 1.15
	topRankCutoff     = 5
)

var keySectionWords = []string{"conclusion", "summary", "key", "important"}

// RelatedRequest describes the reader's position.
type RelatedRequest struct {
	CurrentPage int
	// CurrentDocument names the document being read. When empty it is taken
	// from the first ranked section on CurrentPage.
	CurrentDocument string
	CurrentSection  string
	Persona         string
	Job             string
	Limit           int
}

// Related is one suggestion for further reading.
type Related struct {
	Document    string  `json:"document"`
	Heading     string  `json:"section_title"`
	Page        int     `json:"page_number"`
	Score       float64 `json:"relevance_score"`
	Explanation string  `json:"explanation"`
}

type candidate struct {
	doctree.ScoredSection
	boosted float64
}

// FindRelated returns up to Limit sections worth reading next. Sections on
// the current page are never returned. Without current section text the
// prior relevance order is used; otherwise sections are re-scored against
// the persona, job and current text, boosted, and spread across documents.
func FindRelated(scorer *relevance.Scorer, req RelatedRequest, ranked []doctree.ScoredSection) []Related {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	var cands []candidate
	for _, s := range ranked {
		if s.Page != req.CurrentPage {
			cands = append(cands, candidate{ScoredSection: s, boosted: s.Score})
		}
	}
	if len(cands) == 0 {
		return []Related{}
	}

	if strings.TrimSpace(req.CurrentSection) == "" {
		sort.SliceStable(cands, func(a, b int) bool {
			return cands[a].Score > cands[b].Score
		})
		if len(cands) > limit {
			cands = cands[:limit]
		}
		return explainAll(cands, req)
	}

	q := relevance.NewQuery(req.Persona, req.Job, req.CurrentSection)
	headings := make([]string, len(cands))
	texts := make([]string, len(cands))
	for i, c := range cands {
		headings[i] = c.Heading
		texts[i] = c.Heading + " " + c.Text
	}
	base := scorer.Score(q, headings, texts)

	currentDoc := req.CurrentDocument
	if currentDoc == "" {
		currentDoc = documentOnPage(ranked, req.CurrentPage)
	}
	for i := range cands {
		cands[i].boosted = base[i] * boost(cands[i].ScoredSection, currentDoc)
	}
	sort.SliceStable(cands, func(a, b int) bool {
		return cands[a].boosted > cands[b].boosted
	})

	return explainAll(diversify(cands, limit), req)
}

func boost(s doctree.ScoredSection, currentDoc string) float64 {
	f := 1.0
	if currentDoc != "" && s.Document == currentDoc {
		f *= sameDocumentBoost
	}
	if s.Rank > 0 && s.Rank <= topRankCutoff {
		f *= topRankBoost
	}
	heading := strings.ToLower(s.Heading)
	for _, w := range keySectionWords {
		if strings.Contains(heading, w) {
			f *= keySectionBoost
			break
		}
	}
	return f
}

func documentOnPage(ranked []doctree.ScoredSection, page int) string {
	for _, s := range ranked {
		if s.Page == page {
			return s.Document
		}
	}
	return ""
}

// diversify picks limit candidates from the best 2×limit. The best section of
// each document is taken first, in score order, and remaining slots are
// filled by score. cands must be sorted by boosted score.
func diversify(cands []candidate, limit int) []candidate {
	window := cands
	if len(window) > 2*limit {
		window = window[:2*limit]
	}

	picked := make([]bool, len(window))
	seen := make(map[string]bool)
	n := 0
	for i, c := range window {
		if n == limit {
			break
		}
		if !seen[c.Document] {
			seen[c.Document] = true
			picked[i] = true
			n++
		}
	}
	for i := range window {
		if n == limit {
			break
		}
		if !picked[i] {
			picked[i] = true
			n++
		}
	}

	out := make([]candidate, 0, n)
	for i, c := range window {
		if picked[i] {
			out = append(out, c)
		}
	}
	return out
}

func explainAll(cands []candidate, req RelatedRequest) []Related {
	out := make([]Related, 0, len(cands))
	for _, c := range cands {
		out = append(out, Related{
			Document:    c.Document,
			Heading:     c.Heading,
			Page:        c.Page,
			Score:       c.boosted,
			Explanation: Explain(c.Section, c.boosted, req),
		})
	}
	return out
}
