// Package relevance scores text against a persona and job query.
package relevance

import (
	"sort"
	"strings"
	"unicode"
)

var stopwords = toSet(strings.Fields(`
a about above after again against all also am an and any are as at be because
been before being below between both but by can could did do does doing down
during each few for from further had has have having he her here hers him his
how i if in into is it its itself just me more most my no nor not now of off on
once only or other our ours out over own same she should so some such than that
the their theirs them then there these they this those through to too under
until up very was we were what when where which while who whom why will with
would you your yours need needs want wants using use used make help get
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Terms returns the stemmed content words of text in order, repeats included.
// Stopwords and tokens shorter than three characters are dropped.
func Terms(text string) []string {
	tokens := Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, stem(tok))
	}
	return out
}

// Keywords returns the distinct terms of all parts, sorted.
func Keywords(parts ...string) []string {
	seen := make(map[string]struct{})
	for _, p := range parts {
		for _, t := range Terms(p) {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// stem folds simple plural forms so "hotels" matches "hotel" and "beaches" matches "beach".
func stem(tok string) string {
	n := len(tok)
	switch {
	case n > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:n-3] + "y"
	case n > 4 && (strings.HasSuffix(tok, "ches") || strings.HasSuffix(tok, "shes") ||
		strings.HasSuffix(tok, "sses") || strings.HasSuffix(tok, "xes")):
		return tok[:n-2]
	case n > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us") && !strings.HasSuffix(tok, "is"):
		return tok[:n-1]
	}
	return tok
}
