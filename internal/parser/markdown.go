package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]doctree.TextRun, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	l := newLayout()

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			l.heading(string(node.Text(src)), node.Level)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				l.bullet(extractText(item, src))
			}
		case *ast.ThematicBreak:
		default:
			for _, para := range strings.Split(extractText(n, src), "\n\n") {
				l.paragraph(para)
			}
		}
	}
	return l.runs, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	// Leaf blocks such as code carry raw lines instead of inline children.
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(extractText(c, src))
			if c.Type() == ast.TypeBlock {
				buf.WriteString("\n\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
