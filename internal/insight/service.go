package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/docsense/internal/doctree"
)

// MaxFactsPerPage bounds the facts generated for one page.
const MaxFactsPerPage = 2

// Operation names recorded in Stats.
const (
	opInsights = "insights"
	opTopics   = "topics"
	opFact     = "fact"
)

var (
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// Service generates insights and facts through a Generator, retrying
// transient failures and recording call statistics.
type Service struct {
	gen     Generator
	stats   *Stats
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewService(gen Generator, log *slog.Logger) *Service {
	if gen == nil {
		gen = Noop{}
	}
	return &Service{
		gen:     gen,
		stats:   NewStats(time.Hour),
		log:     log,
		backoff: Backoff,
	}
}

// Available reports whether a real provider is configured.
func (s *Service) Available() bool {
	_, off := s.gen.(Noop)
	return !off
}

func (s *Service) Stats() StatsSnapshot {
	return s.stats.Snapshot(s.gen.Name())
}

// Insights returns labelled insights about text for a persona and task.
func (s *Service) Insights(ctx context.Context, text, persona, job, extra string) ([]Insight, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoSignificantContent
	}
	raw, err := s.complete(ctx, opInsights, buildInsightPrompt(text, persona, job, extra))
	if err != nil {
		return nil, err
	}
	return ParseInsights(raw), nil
}

// PageFacts extracts topics from a significant page and generates up to
// MaxFactsPerPage facts about them. Topics whose fact cannot be generated
// or fails validation are skipped.
func (s *Service) PageFacts(ctx context.Context, page PageContent) ([]Fact, error) {
	if !page.Significant {
		return nil, ErrNoSignificantContent
	}
	raw, err := s.complete(ctx, opTopics, buildTopicsPrompt(page.Page, page.Text))
	if err != nil {
		return nil, err
	}
	topics := parseTopics(raw)

	var facts []Fact
	for _, topic := range topics {
		if len(facts) == MaxFactsPerPage {
			break
		}
		raw, err := s.complete(ctx, opFact, buildFactPrompt(topic, page.Text))
		if err != nil {
			if errors.Is(err, ErrUnavailable) || ctx.Err() != nil {
				return facts, err
			}
			s.log.Warn("fact generation failed", "page", page.Page, "topic", topic, "error", err)
			continue
		}
		f, ok := parseFact(raw)
		if !ok {
			continue
		}
		f.Page = page.Page
		facts = append(facts, f)
	}
	return facts, nil
}

// DocumentFacts generates facts for every significant page of a document,
// keyed by page number. Pages that fail are logged and left out.
func (s *Service) DocumentFacts(ctx context.Context, runs []doctree.TextRun) (map[int][]Fact, error) {
	pages := Significant(AnalyzePages(runs))
	if len(pages) == 0 {
		return nil, ErrNoSignificantContent
	}
	out := make(map[int][]Fact)
	for _, p := range pages {
		facts, err := s.PageFacts(ctx, p)
		if err != nil {
			if errors.Is(err, ErrUnavailable) || ctx.Err() != nil {
				return out, err
			}
			s.log.Warn("page facts failed", "page", p.Page, "error", err)
			continue
		}
		if len(facts) > 0 {
			out[p.Page] = facts
		}
	}
	return out, nil
}

// complete calls the generator, retrying retryable errors with backoff.
func (s *Service) complete(ctx context.Context, op, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, s.backoff(attempt-1)); err != nil {
				return "", err
			}
		}
		start := time.Now()
		out, err := s.gen.Complete(ctx, prompt)
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		s.stats.Record(op, time.Since(start), err)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
		s.log.Warn("retryable generator error", "op", op, "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("%s: retries exhausted: %w", op, lastErr)
}

func parseTopics(raw string) []string {
	m := jsonArrayRe.FindString(stripCodeBlock(raw))
	if m == "" {
		return nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(m), &topics); err != nil {
		return nil
	}
	out := topics[:0]
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseFact(raw string) (Fact, bool) {
	m := jsonObjectRe.FindString(stripCodeBlock(raw))
	if m == "" {
		return Fact{}, false
	}
	var f Fact
	if err := json.Unmarshal([]byte(m), &f); err != nil {
		return Fact{}, false
	}
	return f, ValidateFact(&f)
}
