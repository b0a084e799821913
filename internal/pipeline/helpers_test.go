package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsense/internal/config"
	"github.com/dgallion1/docsense/internal/insight"
)

const coastGuide = `# Beaches

The coast has sandy beaches for swimming and nightlife.

## Hotels

Book hotels early in summer.
`

// longCoastPage is one page of prose long enough to count as significant.
var longCoastPage = "# Lighthouses\n\n" + strings.Repeat("The old lighthouse guided fishing boats safely along the rocky northern coast every night. ", 8) + "\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		WorkerCount:       1,
		MaxQueueSize:      4,
		MaxConcurrentDocs: 2,
		JobTTL:            time.Hour,
		AnalysisCacheTTL:  time.Hour,
		TopKSections:      20,
		MaxSnippets:       3,
		RelatedLimit:      3,
		FactsEnabled:      true,
	}
}

// factGenerator answers topic prompts with a fixed topic list and fact
// prompts with a fact about the requested topic.
type factGenerator struct{}

func (factGenerator) Name() string { return "stub" }

func (factGenerator) Complete(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "JSON array of strings") {
		return `["lighthouses", "fishing"]`, nil
	}
	topic := "fishing"
	if strings.Contains(prompt, `"lighthouses"`) {
		topic = "lighthouses"
	}
	return `{"fact": "Did you know that ` + topic + ` shaped coastal towns?", "topic": "` + topic + `", "category": "history"}`, nil
}

// putDocument extracts data as name and stores it under id.
func putDocument(t *testing.T, s *Store, id, name, data string, uploaded time.Time) *Document {
	t.Helper()
	ex := NewAnalyzer(1, discardLogger()).Extract(Source{Name: name, Data: []byte(data)})
	if ex.Err != nil {
		t.Fatalf("extract %s: %v", name, ex.Err)
	}
	d := newDocument(id, ex, ContentHashHex([]byte(flattenRuns(ex.Runs))), "", uploaded)
	s.PutDocument(d)
	return d
}

func noopInsights() *insight.Service {
	return insight.NewService(nil, discardLogger())
}
