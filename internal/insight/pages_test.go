package insight

import (
	"strings"
	"testing"

	"github.com/dgallion1/docsense/internal/doctree"
)

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}

func TestAnalyzePages(t *testing.T) {
	runs := []doctree.TextRun{
		{Page: 1, Text: "Table of Contents"},
		{Page: 1, Text: "Chapter 1 .... page 3"},
		{Page: 2, Text: words(40, "coastline")},
		{Page: 2, Text: words(30, "harbour")},
		{Page: 4, Text: "Copyright 2024. All rights reserved. See the index and references in the appendix."},
	}
	pages := AnalyzePages(runs)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].Page != 1 || pages[1].Page != 2 || pages[2].Page != 4 {
		t.Fatalf("expected pages 1,2,4 in order, got %+v", pages)
	}
	if pages[0].Significant {
		t.Error("expected short contents page to be insignificant")
	}
	if !pages[1].Significant {
		t.Errorf("expected page 2 significant (%d words)", pages[1].WordCount)
	}
	if pages[1].WordCount != 70 {
		t.Errorf("expected 70 words, got %d", pages[1].WordCount)
	}
	if pages[2].Significant {
		t.Error("expected boilerplate page to be insignificant")
	}

	sig := Significant(pages)
	if len(sig) != 1 || sig[0].Page != 2 {
		t.Errorf("expected only page 2 significant, got %+v", sig)
	}
}

func TestIsBoilerplate(t *testing.T) {
	if !isBoilerplate("copyright notice, all rights reserved, see appendix", 60) {
		t.Error("expected three indicators to count as boilerplate")
	}
	if isBoilerplate("copyright and appendix", 60) {
		t.Error("expected two indicators to pass")
	}
	if !isBoilerplate("short", 10) {
		t.Error("expected short text to count as boilerplate")
	}
}
