// Package sections groups classified runs into heading-led sections.
package sections

import (
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
)

// Build scans classified runs in order and returns one section per HEADING.
// The TITLE run is skipped, and body runs before the first heading are
// dropped. A document without headings yields a single section named after
// the document that holds all non-title text. No runs yields no sections.
func Build(runs []doctree.TextRun, document string) []doctree.Section {
	if len(runs) == 0 {
		return nil
	}

	var out []doctree.Section

	var (
		open    bool
		heading doctree.TextRun
		body    []string
		minPage int
	)
	flush := func() {
		if !open {
			return
		}
		out = append(out, doctree.Section{
			Document: document,
			Heading:  heading.Text,
			Page:     minPage,
			Text:     strings.Join(body, " "),
		})
	}

	for _, r := range runs {
		switch r.Tag {
		case doctree.TagTitle:
			continue
		case doctree.TagHeading:
			flush()
			open = true
			heading = r
			body = nil
			minPage = r.Page
		default:
			if !open {
				continue
			}
			// Page comes from body lines once there are any.
			if len(body) == 0 {
				minPage = r.Page
			} else {
				minPage = min(minPage, r.Page)
			}
			body = append(body, r.Text)
		}
	}
	flush()

	if len(out) > 0 {
		return out
	}
	return []doctree.Section{fallback(runs, document)}
}

func fallback(runs []doctree.TextRun, document string) doctree.Section {
	var parts []string
	for _, r := range runs {
		if r.Tag == doctree.TagTitle {
			continue
		}
		parts = append(parts, r.Text)
	}
	return doctree.Section{
		Document: document,
		Heading:  document,
		Page:     1,
		Text:     strings.Join(parts, " "),
	}
}
