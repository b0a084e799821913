package relevance

import (
	"sort"
	"strings"
)

// Query is the text and keyword set derived from a persona and a job.
type Query struct {
	Text     string
	Keywords []string // distinct, sorted

	set map[string]struct{}
}

// NewQuery joins the non-empty parts into one query.
func NewQuery(parts ...string) Query {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	kw := Keywords(kept...)
	return Query{
		Text:     strings.Join(kept, " "),
		Keywords: kw,
		set:      toSet(kw),
	}
}

// With returns a query extended by extra text, its keywords unioned in.
func (q Query) With(extra string) Query {
	return NewQuery(q.Text, extra)
}

// Has reports whether term is one of the query's keywords.
func (q Query) Has(term string) bool {
	_, ok := q.set[term]
	return ok
}

// Overlap returns the query keywords that occur in text, sorted.
func (q Query) Overlap(text string) []string {
	return intersect(q.set, Terms(text))
}

// Overlap returns the keywords shared by a and b, sorted.
func Overlap(a, b string) []string {
	return intersect(toSet(Terms(a)), Terms(b))
}

func intersect(set map[string]struct{}, terms []string) []string {
	found := make(map[string]struct{})
	for _, t := range terms {
		if _, ok := set[t]; ok {
			found[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
