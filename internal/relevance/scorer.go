package relevance

import (
	"math"
	"sort"

	"github.com/dgallion1/docsense/internal/chunker"
	"github.com/dgallion1/docsense/internal/doctree"
)

// DefaultSnippets is the number of snippets kept per section when none is given.
const DefaultSnippets = 3

// Weights blends the three section signals. Heading must weigh at least as
// much as Body so a heading match never loses to an equal body match.
type Weights struct {
	Heading float64 // term-frequency score of the heading
	Body    float64 // term-frequency score of the body
	Overlap float64 // share of query keywords found anywhere in the section
}

// DefaultWeights is the blend used by NewScorer.
var DefaultWeights = Weights{Heading: 0.4, Body: 0.3, Overlap: 0.3}

// Scorer computes relevance between a Query and section text.
type Scorer struct {
	Weights Weights
	K1      float64 // term-frequency saturation
}

// NewScorer returns a Scorer with the default blend.
func NewScorer() *Scorer {
	return &Scorer{Weights: DefaultWeights, K1: 1.2}
}

// Score returns one score per section. headings and bodies are parallel.
func (s *Scorer) Score(q Query, headings, bodies []string) []float64 {
	n := len(headings)
	scores := make([]float64, n)
	if n == 0 || len(q.Keywords) == 0 {
		return scores
	}

	hc := newCorpus(headings)
	bc := newCorpus(bodies)
	for i := 0; i < n; i++ {
		body := ""
		if i < len(bodies) {
			body = bodies[i]
		}
		overlap := float64(len(q.Overlap(headings[i]+" "+body))) / float64(len(q.Keywords))
		scores[i] = s.Weights.Heading*hc.lexical(q.Keywords, i, s.K1) +
			s.Weights.Body*bc.lexical(q.Keywords, i, s.K1) +
			s.Weights.Overlap*overlap
	}
	return scores
}

// ScoreTexts scores standalone texts, such as snippet candidates, as if
// each were a section body with no heading.
func (s *Scorer) ScoreTexts(q Query, texts []string) []float64 {
	scores := make([]float64, len(texts))
	if len(texts) == 0 || len(q.Keywords) == 0 {
		return scores
	}
	c := newCorpus(texts)
	w := s.Weights.Body + s.Weights.Overlap
	for i, t := range texts {
		overlap := float64(len(q.Overlap(t))) / float64(len(q.Keywords))
		scores[i] = (s.Weights.Body*c.lexical(q.Keywords, i, s.K1) + s.Weights.Overlap*overlap) / w
	}
	return scores
}

// Snippets splits the section body into fragments and returns the top n by
// score, highest first. Every snippet carries the section's page.
func (s *Scorer) Snippets(q Query, sec doctree.Section, n int) []doctree.Snippet {
	if n <= 0 {
		n = DefaultSnippets
	}
	frags := chunker.Fragments(sec.Text)
	if len(frags) == 0 {
		return nil
	}
	scores := s.ScoreTexts(q, frags)

	order := make([]int, len(frags))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if len(order) > n {
		order = order[:n]
	}
	out := make([]doctree.Snippet, 0, len(order))
	for _, i := range order {
		out = append(out, doctree.Snippet{
			Document: sec.Document,
			Text:     frags[i],
			Page:     sec.Page,
			Score:    scores[i],
		})
	}
	return out
}

// corpus holds term frequencies for a set of texts scored together.
type corpus struct {
	tf []map[string]int
	df map[string]int
}

func newCorpus(texts []string) *corpus {
	c := &corpus{tf: make([]map[string]int, len(texts)), df: make(map[string]int)}
	for i, t := range texts {
		freq := make(map[string]int)
		for _, term := range Terms(t) {
			freq[term]++
		}
		for term := range freq {
			c.df[term]++
		}
		c.tf[i] = freq
	}
	return c
}

// lexical is a length-independent BM25 variant normalised into [0, 1): the
// idf-weighted mean over query terms of tf/(tf+k1).
func (c *corpus) lexical(terms []string, i int, k1 float64) float64 {
	if i >= len(c.tf) {
		return 0
	}
	n := float64(len(c.tf))
	num, den := 0.0, 0.0
	for _, t := range terms {
		df := float64(c.df[t])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		den += idf
		if tf := float64(c.tf[i][t]); tf > 0 {
			num += idf * tf / (tf + k1)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
