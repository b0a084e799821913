package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles become heading lines.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]doctree.TextRun, error) {
	ra, size, err := readerAt(r)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}
	doc, err := docx.Parse(ra, size)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}

	l := newLayout()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		switch style := docxStyle(para); {
		case strings.EqualFold(style, "Title"):
			l.heading(strings.ToUpper(text), 1)
		case docxHeadingLevel(style) > 0:
			l.heading(text, docxHeadingLevel(style))
		case strings.HasPrefix(strings.ToLower(style), "listparagraph"):
			l.bullet(text)
		default:
			l.paragraph(text)
		}
	}
	return l.runs, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel maps "Heading1" or "heading 1" style names to 1..6.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") || len(s) != len("heading")+1 {
		return 0
	}
	if d := s[len(s)-1]; d >= '1' && d <= '6' {
		return int(d - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
