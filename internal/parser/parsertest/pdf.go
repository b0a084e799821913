// Package parsertest builds small PDF files for tests.
package parsertest

import (
	"fmt"
	"strings"
)

// Line is one line of text drawn at (X, Y) in PDF user space (origin bottom-left).
type Line struct {
	Text string
	X, Y float64
	Size float64
	Bold bool
}

// Page is the lines drawn on one page.
type Page []Line

// BuildPDF writes a minimal PDF with one content stream per page, using the
// standard Helvetica and Helvetica-Bold fonts on US Letter pages.
func BuildPDF(pages ...Page) []byte {
	// Objects: 1 catalog, 2 pages, 3 Helvetica, 4 Helvetica-Bold, then a
	// page object and a content stream per page.
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 5+2*i))
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold >>")

	for i, page := range pages {
		var stream strings.Builder
		for _, ln := range page {
			font := "F1"
			if ln.Bold {
				font = "F2"
			}
			fmt.Fprintf(&stream, "BT\n/%s %g Tf\n%g %g Td\n(%s) Tj\nET\n", font, ln.Size, ln.X, ln.Y, escape(ln.Text))
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> >>",
			6+2*i))
		s := stream.String()
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(s), s))
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs)+1)
	for i, o := range objs {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objs)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return []byte(b.String())
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

// ExecutiveSummary is a one-page report: a bold 18pt heading followed by
// three 11pt body lines.
func ExecutiveSummary() []byte {
	return BuildPDF(Page{
		{Text: "Executive Summary", X: 72, Y: 720, Size: 18, Bold: true},
		{Text: "The company closed the year with strong operating income.", X: 72, Y: 690, Size: 11},
		{Text: "Revenue grew across all regions and product lines this year.", X: 72, Y: 676, Size: 11},
		{Text: "Costs stayed flat while margins improved throughout the year.", X: 72, Y: 662, Size: 11},
	})
}

// ShortSummary is ExecutiveSummary with short body sentences.
func ShortSummary() []byte {
	return BuildPDF(Page{
		{Text: "Executive Summary", X: 72, Y: 720, Size: 18, Bold: true},
		{Text: "Revenue grew in every region.", X: 72, Y: 690, Size: 11},
		{Text: "The main drivers were new markets.", X: 72, Y: 676, Size: 11},
		{Text: "Costs remained flat this year.", X: 72, Y: 662, Size: 11},
	})
}
