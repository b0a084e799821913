package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// defaultPageTop is the top edge of US Letter, used when a page has no usable MediaBox.
const defaultPageTop = 792.0

// forceBoldFlag is the ForceBold bit of a font descriptor's Flags entry.
const forceBoldFlag = 1 << 18

// semiboldWeight is the FontWeight at and above which a font counts as bold.
const semiboldWeight = 600

var boldIndicators = []string{
	"bold", "black", "semibold", "demibold", "heavy", "extrabold",
	"ultrabold", "thick", "dark", "medium", "semib", "demi",
}

// PDFParser extracts one TextRun per visual line from a PDF.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (runs []doctree.TextRun, err error) {
	ra, size, err := readerAt(r)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}

	// The PDF library panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			runs, err = nil, &UnreadableError{Filename: filename, Err: fmt.Errorf("pdf: %v", rec)}
		}
	}()

	reader, err := pdflib.NewReader(ra, size)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		runs = append(runs, pageRuns(page, i)...)
	}
	return runs, nil
}

// pageRuns returns the lines of one page. A page whose content stream cannot
// be interpreted contributes nothing.
func pageRuns(page pdflib.Page, num int) (runs []doctree.TextRun) {
	defer func() {
		if recover() != nil {
			runs = nil
		}
	}()

	top := pageTop(page.V)
	boldFonts := boldFontsOf(page)

	content := page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, glyph{
			s:        t.S,
			x:        t.X,
			w:        t.W,
			baseline: top - t.Y,
			size:     t.FontSize,
			bold:     isBoldName(t.Font) || boldFonts[t.Font],
		})
	}

	for _, ln := range groupLines(glyphs) {
		if run, ok := ln.toRun(num); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// pageTop returns the upper edge of the MediaBox, which may be inherited from
// a parent Pages node. PDF y runs bottom-up, so top-down y is pageTop - y.
func pageTop(v pdflib.Value) float64 {
	for node := v; !node.IsNull(); node = node.Key("Parent") {
		box := node.Key("MediaBox")
		if box.Len() == 4 {
			if top := box.Index(3).Float64(); top > box.Index(1).Float64() {
				return top
			}
		}
	}
	return defaultPageTop
}

// boldFontsOf maps base font names to whether their descriptor marks them bold.
func boldFontsOf(page pdflib.Page) map[string]bool {
	out := make(map[string]bool)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		desc := f.V.Key("FontDescriptor")
		if desc.IsNull() {
			// Composite fonts keep the descriptor on the descendant.
			desc = f.V.Key("DescendantFonts").Index(0).Key("FontDescriptor")
		}
		if desc.IsNull() {
			continue
		}
		out[f.BaseFont()] = isBoldDescriptor(desc.Key("Flags").Int64(), desc.Key("FontWeight").Float64())
	}
	return out
}

func isBoldName(font string) bool {
	lower := strings.ToLower(font)
	for _, ind := range boldIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func isBoldDescriptor(flags int64, weight float64) bool {
	return flags&forceBoldFlag != 0 || weight >= semiboldWeight
}
