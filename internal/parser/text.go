package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
)

// maxTextHeadingWords bounds how long a standalone line may be to read as a heading.
const maxTextHeadingWords = 12

// TextParser handles plain text files. A paragraph that is a single short
// line without closing punctuation is set as a heading.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]doctree.TextRun, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}

	l := newLayout()
	for _, para := range paragraphs {
		if len(para) == 1 && looksLikeHeading(para[0]) {
			l.heading(para[0], 3)
			continue
		}
		l.paragraph(strings.Join(para, " "))
	}
	return l.runs, nil
}

func looksLikeHeading(line string) bool {
	if len(strings.Fields(line)) > maxTextHeadingWords {
		return false
	}
	return !strings.ContainsAny(line[len(line)-1:], ".,;!")
}
