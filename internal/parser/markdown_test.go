package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docsense/internal/doctree"
)

func texts(runs []doctree.TextRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Text
	}
	return out
}

func TestMarkdownParser_HeadingSizes(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

- first item
- second item
`
	runs, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Title", "Intro text.", "Section A", "Section A content.", "Subsection A1", "• first item", "• second item"}
	got := texts(runs)
	if len(got) != len(want) {
		t.Fatalf("expected %d runs, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("run %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if runs[0].FontSize <= runs[2].FontSize || runs[2].FontSize <= runs[4].FontSize {
		t.Errorf("expected h1 > h2 > h3 sizes, got %v %v %v", runs[0].FontSize, runs[2].FontSize, runs[4].FontSize)
	}
	if !runs[0].Bold || runs[1].Bold {
		t.Error("expected headings bold and body regular")
	}
	if runs[1].FontSize != bodySize {
		t.Errorf("expected body size %v, got %v", bodySize, runs[1].FontSize)
	}
}

func TestMarkdownParser_InlineFormattingNotDuplicated(t *testing.T) {
	runs, err := (&MarkdownParser{}).Parse(strings.NewReader("Some **bold** and *em* text\nwrapped here."), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || runs[0].Text != "Some bold and em text wrapped here." {
		t.Errorf("unexpected runs %q", texts(runs))
	}
}

func TestLayout_WrapsAndPaginates(t *testing.T) {
	l := newLayout()
	for i := 0; i < 80; i++ {
		l.paragraph(strings.Repeat("word ", 30))
	}
	last := l.runs[len(l.runs)-1]
	if last.Page < 2 {
		t.Errorf("expected content to flow onto later pages, last page %d", last.Page)
	}
	for _, r := range l.runs {
		if len([]rune(r.Text)) > wrapColumns {
			t.Fatalf("line longer than %d columns: %q", wrapColumns, r.Text)
		}
		if r.BBox.Y1 > pageBottomMargin+bodySize*lineSpacing {
			t.Fatalf("line below bottom margin: %+v", r.BBox)
		}
	}
}

func TestWrap(t *testing.T) {
	got := wrap("aaa bbb ccc", 7)
	if len(got) != 2 || got[0] != "aaa bbb" || got[1] != "ccc" {
		t.Errorf("unexpected wrap %q", got)
	}
	if got := wrap("", 10); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}
