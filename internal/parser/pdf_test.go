package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/outline"
	"github.com/dgallion1/docsense/internal/parser/parsertest"
	"github.com/dgallion1/docsense/internal/sections"
)

func TestPDFParser_ExtractsLines(t *testing.T) {
	p := &PDFParser{}
	runs, err := p.Parse(bytes.NewReader(parsertest.ExecutiveSummary()), "report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs, got %d: %+v", len(runs), runs)
	}

	head := runs[0]
	if head.Text != "Executive Summary" {
		t.Errorf("expected %q, got %q", "Executive Summary", head.Text)
	}
	if head.FontSize != 18 {
		t.Errorf("expected font size 18, got %v", head.FontSize)
	}
	if !head.Bold {
		t.Error("expected heading to be bold")
	}
	if head.Page != 1 {
		t.Errorf("expected page 1, got %d", head.Page)
	}
	for i, r := range runs[1:] {
		if r.Bold {
			t.Errorf("body line %d: expected not bold", i)
		}
		if r.FontSize != 11 {
			t.Errorf("body line %d: expected size 11, got %v", i, r.FontSize)
		}
		if r.BBox.Y0 <= runs[i].BBox.Y0 {
			t.Errorf("body line %d: expected lines top to bottom, got y0 %v after %v", i, r.BBox.Y0, runs[i].BBox.Y0)
		}
	}
}

func TestPDFParser_RoundTrip(t *testing.T) {
	runs, err := (&PDFParser{}).Parse(bytes.NewReader(parsertest.ExecutiveSummary()), "report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outline.Classify(runs)
	if runs[0].Tag != doctree.TagHeading && runs[0].Tag != doctree.TagTitle {
		t.Errorf("expected heading line to be HEADING or TITLE, got %s", runs[0].Tag)
	}
	for i, r := range runs[1:] {
		if r.Tag != doctree.TagBody {
			t.Errorf("body line %d: expected BODY, got %s", i, r.Tag)
		}
	}

	secs := sections.Build(runs, "report.pdf")
	if len(secs) != 1 {
		t.Fatalf("expected 1 section, got %d", len(secs))
	}
	if secs[0].Heading != "Executive Summary" {
		t.Errorf("expected heading %q, got %q", "Executive Summary", secs[0].Heading)
	}
	want := strings.Join([]string{
		"The company closed the year with strong operating income.",
		"Revenue grew across all regions and product lines this year.",
		"Costs stayed flat while margins improved throughout the year.",
	}, " ")
	if secs[0].Text != want {
		t.Errorf("expected body %q, got %q", want, secs[0].Text)
	}
}

func TestPDFParser_RoundTripShortSentences(t *testing.T) {
	runs, err := (&PDFParser{}).Parse(bytes.NewReader(parsertest.ShortSummary()), "summary.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(runs))
	}

	outline.Classify(runs)
	for _, r := range runs[1:] {
		if r.Tag != doctree.TagBody {
			t.Errorf("%q: expected BODY, got %s", r.Text, r.Tag)
		}
	}

	secs := sections.Build(runs, "summary.pdf")
	if len(secs) != 1 {
		t.Fatalf("expected 1 section, got %d", len(secs))
	}
	if secs[0].Heading != "Executive Summary" {
		t.Errorf("expected heading %q, got %q", "Executive Summary", secs[0].Heading)
	}
	want := "Revenue grew in every region. The main drivers were new markets. Costs remained flat this year."
	if secs[0].Text != want {
		t.Errorf("expected body %q, got %q", want, secs[0].Text)
	}
}

func TestPDFParser_MultiPage(t *testing.T) {
	data := parsertest.BuildPDF(
		parsertest.Page{{Text: "Page one heading", X: 72, Y: 720, Size: 16, Bold: true}},
		parsertest.Page{},
		parsertest.Page{{Text: "Page three text", X: 72, Y: 700, Size: 11}},
	)
	runs, err := (&PDFParser{}).Parse(bytes.NewReader(data), "multi.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Page != 1 || runs[1].Page != 3 {
		t.Errorf("expected pages 1 and 3, got %d and %d", runs[0].Page, runs[1].Page)
	}
}

func TestPDFParser_Unreadable(t *testing.T) {
	_, err := (&PDFParser{}).Parse(strings.NewReader("definitely not a pdf"), "junk.pdf")
	if !errors.Is(err, ErrDocumentUnreadable) {
		t.Fatalf("expected ErrDocumentUnreadable, got %v", err)
	}
	var ue *UnreadableError
	if !errors.As(err, &ue) || ue.Filename != "junk.pdf" {
		t.Errorf("expected UnreadableError for junk.pdf, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, parsertest.ExecutiveSummary(), 0o644); err != nil {
		t.Fatal(err)
	}
	runs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 4 {
		t.Errorf("expected 4 runs, got %d", len(runs))
	}

	_, err = ParseFile(filepath.Join(dir, "missing.pdf"))
	if !errors.Is(err, ErrDocumentUnreadable) {
		t.Errorf("expected ErrDocumentUnreadable for missing file, got %v", err)
	}

	if _, err := ParseFile(filepath.Join(dir, "data.xyz")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestBoldDetection(t *testing.T) {
	for _, name := range []string{"Helvetica-Bold", "ABCDEF+Arial-BoldMT", "Roboto-Black", "OpenSans-SemiBold", "Lato-Heavy"} {
		if !isBoldName(name) {
			t.Errorf("expected %q to be bold", name)
		}
	}
	for _, name := range []string{"Helvetica", "Times-Roman", "Courier-Oblique"} {
		if isBoldName(name) {
			t.Errorf("expected %q not to be bold", name)
		}
	}
	if !isBoldDescriptor(forceBoldFlag|32, 400) {
		t.Error("expected ForceBold flag to mean bold")
	}
	if !isBoldDescriptor(32, 700) {
		t.Error("expected weight 700 to mean bold")
	}
	if isBoldDescriptor(32, 500) {
		t.Error("expected weight 500 not to mean bold")
	}
}
