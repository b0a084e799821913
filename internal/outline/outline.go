package outline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
)

// maxLevel is the deepest outline level emitted; smaller headings collapse into it.
const maxLevel = 4

// Build returns the outline of classified runs. Levels are assigned by the
// rank of each heading's font size among the distinct heading sizes, so the
// largest heading size is H1 and the fourth largest and below are H4.
func Build(runs []doctree.TextRun) []doctree.OutlineEntry {
	var sizes []float64
	seen := make(map[float64]bool)
	for _, r := range runs {
		if r.Tag != doctree.TagHeading {
			continue
		}
		sz := roundSize(r.FontSize)
		if !seen[sz] {
			seen[sz] = true
			sizes = append(sizes, sz)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	level := make(map[float64]int, len(sizes))
	for i, sz := range sizes {
		level[sz] = min(i+1, maxLevel)
	}

	type key struct {
		text string
		page int
	}
	emitted := make(map[key]bool)

	entries := make([]doctree.OutlineEntry, 0)
	for _, r := range runs {
		if r.Tag != doctree.TagHeading {
			continue
		}
		text := strings.TrimRight(r.Text, " .")
		if text == "" {
			continue
		}
		k := key{text, r.Page}
		if emitted[k] {
			continue
		}
		emitted[k] = true
		entries = append(entries, doctree.OutlineEntry{
			Level: fmt.Sprintf("H%d", level[roundSize(r.FontSize)]),
			Text:  text,
			Page:  r.Page,
		})
	}
	return entries
}

// Analyze classifies runs and returns the document's title and outline.
// An empty run list yields an empty title and outline.
func Analyze(name string, runs []doctree.TextRun) *doctree.DocTree {
	tree := &doctree.DocTree{Name: name, Outline: []doctree.OutlineEntry{}}
	if len(runs) == 0 {
		return tree
	}
	if title := Classify(runs); title != nil {
		tree.Title = title.Text
	}
	tree.Outline = Build(runs)
	tree.Pages = runs[len(runs)-1].Page
	return tree
}
