package insight

import (
	"regexp"
	"strings"
)

// Fact is a "did you know" fact generated for a page topic.
type Fact struct {
	Text     string `json:"fact"`
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Page     int    `json:"page_number"`
}

// Insight is one labelled observation about a passage.
type Insight struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Insight types.
const (
	TypeTakeaway   = "takeaway"
	TypeFact       = "fact"
	TypeConnection = "connection"
	TypeInfo       = "info"
)

var validCategories = map[string]bool{
	"science":    true,
	"history":    true,
	"technology": true,
	"nature":     true,
	"culture":    true,
	"other":      true,
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

// ValidateFact checks a generated fact and normalises its category.
// Returns false if the fact should be discarded.
func ValidateFact(f *Fact) bool {
	if f == nil {
		return false
	}
	f.Text = strings.TrimSpace(f.Text)
	f.Topic = strings.TrimSpace(f.Topic)
	if len(f.Text) < 10 || len(f.Text) > 400 || f.Topic == "" {
		return false
	}
	if injectionPattern.MatchString(f.Text) {
		return false
	}
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	if !validCategories[f.Category] {
		f.Category = "other"
	}
	return true
}

var labelRe = regexp.MustCompile(`^(?:[-*•]\s*)?\**(TAKEAWAY|FACT|CONNECTION)\**\s*:\s*(.+)$`)

// ParseInsights reads TAKEAWAY/FACT/CONNECTION lines from model output.
// Output without any labelled line becomes a single info insight.
func ParseInsights(raw string) []Insight {
	var out []Insight
	for _, line := range strings.Split(raw, "\n") {
		m := labelRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		content := strings.TrimSpace(m[2])
		if content == "" {
			continue
		}
		out = append(out, Insight{Type: strings.ToLower(m[1]), Content: content})
	}
	if len(out) == 0 {
		if raw = strings.TrimSpace(raw); raw != "" {
			out = append(out, Insight{Type: TypeInfo, Content: truncate(raw, 200)})
		}
	}
	return out
}
