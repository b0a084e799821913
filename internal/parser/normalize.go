package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cleanText applies NFKC folding, which turns ligatures and full-width forms
// into plain letters, and collapses whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
