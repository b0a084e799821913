// Package rank orders scored sections, selects the most relevant ones and
// re-ranks them around a reader's current position.
package rank

import (
	"sort"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/relevance"
)

// DefaultTopK is the number of sections kept by Select when none is given.
const DefaultTopK = 20

// Options sets how many sections and snippets Select keeps.
type Options struct {
	TopK     int
	Snippets int
}

// Selection is a ranked section with its best snippets.
type Selection struct {
	doctree.ScoredSection
	Snippets []doctree.Snippet `json:"snippets"`
}

// Rank scores every section against q and returns them best first with
// ranks 1..N. Equal scores keep their input order.
func Rank(scorer *relevance.Scorer, q relevance.Query, secs []doctree.Section) []doctree.ScoredSection {
	if len(secs) == 0 {
		return []doctree.ScoredSection{}
	}
	headings := make([]string, len(secs))
	bodies := make([]string, len(secs))
	for i, s := range secs {
		headings[i] = s.Heading
		bodies[i] = s.Text
	}
	scores := scorer.Score(q, headings, bodies)

	ranked := make([]doctree.ScoredSection, len(secs))
	for i, s := range secs {
		ranked[i] = doctree.ScoredSection{Section: s, Score: scores[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Select keeps the first TopK ranked sections and attaches each one's top
// snippets.
func Select(scorer *relevance.Scorer, q relevance.Query, ranked []doctree.ScoredSection, opts Options) []Selection {
	k := opts.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]Selection, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, Selection{
			ScoredSection: r,
			Snippets:      scorer.Snippets(q, r.Section, opts.Snippets),
		})
	}
	return out
}
