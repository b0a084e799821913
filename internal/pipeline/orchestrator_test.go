package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docsense/internal/insight"
	"github.com/dgallion1/docsense/internal/rank"
)

func TestOrchestrator_SubmitQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, NewStore(time.Hour), noopInsights(), discardLogger())

	if err := o.Submit(NewJob("j1", "d1", "a.md", "", []byte(coastGuide), "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	job := NewJob("j2", "d2", "b.md", "", []byte(coastGuide), "", "")
	if err := o.Submit(job); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Error("expected rejected job marked failed")
	}
	if o.GetJob("j2") == nil || o.QueueDepth() != 1 {
		t.Error("expected rejected job tracked and one job queued")
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := NewOrchestrator(testConfig(), NewStore(time.Hour), noopInsights(), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	if err := o.Submit(NewJob("j1", "d1", "coast.md", "", []byte(coastGuide), "", "")); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if st := o.GetJob("j1").Snapshot().Status; st == StatusCompleted {
			break
		} else if st == StatusFailed || time.Now().After(deadline) {
			t.Fatalf("job did not complete, status %q", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := o.Store().Document("d1"); err != nil {
		t.Errorf("expected document stored: %v", err)
	}
}

func TestOrchestrator_AnalyzeCachesAndRelates(t *testing.T) {
	s := NewStore(time.Hour)
	putDocument(t, s, "d1", "coast.md", coastGuide, time.Now())
	putDocument(t, s, "d2", "food.md", "# Seafood\n\nFresh fish at the harbour.\n\n## Summary\n\nEat local near the beaches.\n", time.Now())
	o := NewOrchestrator(testConfig(), s, noopInsights(), discardLogger())

	a, err := o.Analyze([]string{"d1", "d2"}, "Travel Planner", "find beaches for friends")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.ExtractedSections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(a.ExtractedSections))
	}
	again, _ := o.Analyze([]string{"d2", "d1"}, "Travel Planner", "find beaches for friends")
	if again != a {
		t.Error("expected cached analysis for the same document set")
	}

	if _, err := o.Analyze([]string{"d1", "nope"}, "p", "j"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}

	related, err := o.Related([]string{"d1", "d2"}, rank.RelatedRequest{
		CurrentPage:     2,
		CurrentDocument: "coast.md",
		CurrentSection:  "sandy beaches and nightlife",
		Persona:         "Travel Planner",
		Job:             "find beaches for friends",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(related) != 3 {
		t.Fatalf("expected 3 related sections, got %+v", related)
	}
	for _, r := range related {
		if r.Explanation == "" {
			t.Errorf("expected explanation for %q", r.Heading)
		}
	}

	// Every section of both documents sits on page 1.
	none, err := o.Related([]string{"d1", "d2"}, rank.RelatedRequest{CurrentPage: 1, Persona: "Travel Planner", Job: "find beaches for friends"})
	if err != nil || len(none) != 0 {
		t.Errorf("expected no related sections off page 1, got %+v (%v)", none, err)
	}
}

func TestOrchestrator_PageFacts(t *testing.T) {
	s := NewStore(time.Hour)
	putDocument(t, s, "d1", "lights.md", longCoastPage, time.Now())
	putDocument(t, s, "d2", "coast.md", coastGuide, time.Now())

	off := NewOrchestrator(testConfig(), s, noopInsights(), discardLogger())
	if _, err := off.PageFacts(context.Background(), "d1", 1); !errors.Is(err, insight.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	o := NewOrchestrator(testConfig(), s, insight.NewService(factGenerator{}, discardLogger()), discardLogger())
	facts, err := o.PageFacts(context.Background(), "d1", 1)
	if err != nil || len(facts) != insight.MaxFactsPerPage {
		t.Fatalf("expected %d facts, got %+v (%v)", insight.MaxFactsPerPage, facts, err)
	}
	if cached, ok := s.Facts("d1", 1); !ok || len(cached) != len(facts) {
		t.Error("expected facts cached in store")
	}
	if _, err := o.PageFacts(context.Background(), "d2", 1); !errors.Is(err, insight.ErrNoSignificantContent) {
		t.Errorf("expected ErrNoSignificantContent for short page, got %v", err)
	}
	if _, err := o.PageFacts(context.Background(), "d1", 9); !errors.Is(err, insight.ErrNoSignificantContent) {
		t.Errorf("expected ErrNoSignificantContent for missing page, got %v", err)
	}
	if _, err := o.PageFacts(context.Background(), "zz", 1); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestOrchestrator_DeleteDocumentRemovesFile(t *testing.T) {
	s := NewStore(time.Hour)
	d := putDocument(t, s, "d1", "coast.md", coastGuide, time.Now())
	d.Path = filepath.Join(t.TempDir(), "coast.md")
	if err := os.WriteFile(d.Path, []byte(coastGuide), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOrchestrator(testConfig(), s, noopInsights(), discardLogger())
	if err := o.DeleteDocument("d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(d.Path); !os.IsNotExist(err) {
		t.Errorf("expected upload removed, got %v", err)
	}
	if err := o.DeleteDocument("d1"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(testConfig(), NewStore(time.Hour), noopInsights(), discardLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob("j1", "d1", "coast.md", "", []byte(coastGuide), "", "")
	if err := o.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Error("expected rejected job marked failed")
	}
}
