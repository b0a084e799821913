package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgallion1/docsense/internal/config"
	"github.com/dgallion1/docsense/internal/insight"
	"github.com/dgallion1/docsense/internal/rank"
	"github.com/dgallion1/docsense/internal/relevance"
)

// ErrQueueFull is returned by Submit when no worker can take the job.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator owns the upload queue, the document store and the
// analyses built over stored documents.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	store    *Store
	analyzer *Analyzer
	insights *insight.Service
	scorer   *relevance.Scorer
	log      *slog.Logger
	cfg      config.Config
	now      func() time.Time

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, store *Store, insights *insight.Service, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		store:    store,
		analyzer: NewAnalyzer(cfg.MaxConcurrentDocs, log),
		insights: insights,
		scorer:   relevance.NewScorer(),
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.analyzer, o.store, o.insights, o.cfg.FactsEnabled, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job and cache cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
				o.store.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the document store for direct use by API handlers.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Insights returns the generative collaborator.
func (o *Orchestrator) Insights() *insight.Service {
	return o.insights
}

// Analyze ranks the sections of the given documents for a persona and
// job, reusing a cached analysis of the same document set when fresh.
func (o *Orchestrator) Analyze(ids []string, persona, job string) (*Analysis, error) {
	docs, err := o.store.Documents(ids)
	if err != nil {
		return nil, err
	}
	key := AnalysisKey(ids, persona, job)
	if a, ok := o.store.CachedAnalysis(key); ok {
		return a, nil
	}

	exs := make([]Extraction, len(docs))
	for i, d := range docs {
		exs[i] = d.extraction()
	}
	a := Analyze(o.scorer, exs, persona, job, rank.Options{
		TopK:     o.cfg.TopKSections,
		Snippets: o.cfg.MaxSnippets,
	}, o.now())
	o.store.CacheAnalysis(key, a)
	o.log.Info("analysis complete", "documents", len(docs), "sections", len(a.Ranked))
	return a, nil
}

// Related finds sections to read next from the reader's position within
// the analysis of ids for req's persona and job.
func (o *Orchestrator) Related(ids []string, req rank.RelatedRequest) ([]rank.Related, error) {
	a, err := o.Analyze(ids, req.Persona, req.Job)
	if err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = o.cfg.RelatedLimit
	}
	return a.Related(o.scorer, req), nil
}

// PageFacts returns facts for one page of a document, generating and
// storing them on first request.
func (o *Orchestrator) PageFacts(ctx context.Context, docID string, page int) ([]insight.Fact, error) {
	doc, err := o.store.Document(docID)
	if err != nil {
		return nil, err
	}
	if facts, ok := o.store.Facts(docID, page); ok {
		return facts, nil
	}
	for _, p := range insight.AnalyzePages(doc.Runs()) {
		if p.Page != page {
			continue
		}
		facts, err := o.insights.PageFacts(ctx, p)
		if err != nil {
			return nil, err
		}
		o.store.SetFacts(docID, page, facts)
		return facts, nil
	}
	return nil, insight.ErrNoSignificantContent
}

// DeleteDocument removes a document and its uploaded file.
func (o *Orchestrator) DeleteDocument(id string) error {
	doc, err := o.store.DeleteDocument(id)
	if err != nil {
		return err
	}
	if doc.Path != "" {
		if err := os.Remove(doc.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.log.Warn("remove upload failed", "doc_id", id, "path", doc.Path, "error", err)
		}
	}
	return nil
}
