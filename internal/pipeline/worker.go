package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/insight"
)

// Worker processes a single upload job.
type Worker struct {
	analyzer     *Analyzer
	store        *Store
	insights     *insight.Service
	factsEnabled bool
	log          *slog.Logger
}

func NewWorker(analyzer *Analyzer, store *Store, insights *insight.Service, factsEnabled bool, log *slog.Logger) *Worker {
	return &Worker{
		analyzer:     analyzer,
		store:        store,
		insights:     insights,
		factsEnabled: factsEnabled,
		log:          log,
	}
}

// Process extracts the job's document into the store and, when enabled,
// generates facts for its significant pages. Fact failures are recorded on
// the job but leave the document in place.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse, classify, build sections.
	job.SetStatus(StatusParsing, "parsing")
	ex := w.analyzer.Extract(Source{Name: job.Filename, Path: job.path, Data: job.FileData()})
	job.releaseData()
	if ex.Err != nil {
		log.Error("extraction failed", "error", ex.Err)
		job.AddError(fmt.Sprintf("extract: %s", ex.Err))
		job.SetStatus(StatusFailed, "parsing")
		w.removeUpload(log, job)
		return
	}

	hash := ContentHashHex([]byte(flattenRuns(ex.Runs)))
	job.mu.Lock()
	job.ContentHash = hash
	job.mu.Unlock()

	// Phase 1.5: Dedup check
	if existing, ok := w.store.FindByHash(hash); ok && len(ex.Runs) > 0 {
		log.Info("duplicate document, skipping", "existing_doc_id", existing)
		job.mu.Lock()
		job.DocID = existing
		job.mu.Unlock()
		job.SetStatus(StatusDupSkipped, "dedup")
		w.removeUpload(log, job)
		return
	}

	doc := newDocument(job.DocID, ex, hash, job.path, job.CreatedAt)
	doc.Persona = job.Persona
	doc.JobToBeDone = job.JobToBeDone
	w.store.PutDocument(doc)

	headings := 0
	for _, r := range ex.Runs {
		if r.Tag == doctree.TagHeading {
			headings++
		}
	}
	job.SetExtracted(ex.Tree.Pages, headings, len(ex.Sections))
	job.SetStatus(StatusClassified, "classified")
	if len(ex.Runs) == 0 {
		log.Warn("no text extracted")
	}
	log.Info("document extracted", "pages", ex.Tree.Pages, "headings", headings, "sections", len(ex.Sections))

	if !w.factsEnabled || !w.insights.Available() {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2: Facts for significant pages.
	job.SetStatus(StatusFacts, "generating facts")
	pages := insight.Significant(insight.AnalyzePages(ex.Runs))
	job.SetSignificantPages(len(pages))
	for _, p := range pages {
		facts, err := w.insights.PageFacts(ctx, p)
		if err != nil {
			log.Warn("page facts failed", "page", p.Page, "error", err)
			job.AddError(fmt.Sprintf("page %d facts: %s", p.Page, err))
			if errors.Is(err, insight.ErrUnavailable) || ctx.Err() != nil {
				break
			}
			continue
		}
		w.store.SetFacts(doc.ID, p.Page, facts)
		job.AddFacts(len(facts))
	}
	log.Info("facts complete", "significant_pages", len(pages))
	job.SetStatus(StatusCompleted, "done")
}

// removeUpload deletes the saved upload of a job that produced no document.
func (w *Worker) removeUpload(log *slog.Logger, job *Job) {
	if job.path == "" {
		return
	}
	if err := os.Remove(job.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("remove upload failed", "path", job.path, "error", err)
	}
}

// flattenRuns joins all line text for content hashing.
func flattenRuns(runs []doctree.TextRun) string {
	var sb strings.Builder
	for i, r := range runs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}
