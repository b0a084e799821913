package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/insight"
)

// ErrDocumentNotFound is returned for unknown document IDs.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentNotFoundError names the missing document.
type DocumentNotFoundError struct {
	ID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// Document is an uploaded, extracted document.
type Document struct {
	ID          string                 `json:"id"`
	Filename    string                 `json:"filename"`
	Title       string                 `json:"title"`
	Outline     []doctree.OutlineEntry `json:"outline"`
	Pages       int                    `json:"pages"`
	Sections    int                    `json:"section_count"`
	Persona     string                 `json:"persona,omitempty"`
	JobToBeDone string                 `json:"job_to_be_done,omitempty"`
	ContentHash string                 `json:"content_hash"`
	Path        string                 `json:"-"`
	UploadedAt  time.Time              `json:"uploaded_at"`

	runs     []doctree.TextRun
	sections []doctree.Section
}

// Runs returns the classified lines of the document.
func (d *Document) Runs() []doctree.TextRun { return d.runs }

// SectionList returns the document's sections in document order.
func (d *Document) SectionList() []doctree.Section { return d.sections }

// extraction rebuilds the analyzer result the document was created from.
func (d *Document) extraction() Extraction {
	return Extraction{
		Name:     d.Filename,
		Runs:     d.runs,
		Tree:     &doctree.DocTree{Name: d.Filename, Title: d.Title, Outline: d.Outline, Sections: d.sections, Pages: d.Pages},
		Sections: d.sections,
	}
}

func newDocument(id string, ex Extraction, hash, path string, uploaded time.Time) *Document {
	return &Document{
		ID:          id,
		Filename:    ex.Name,
		Title:       ex.Tree.Title,
		Outline:     ex.Tree.Outline,
		Pages:       ex.Tree.Pages,
		Sections:    len(ex.Sections),
		ContentHash: hash,
		Path:        path,
		UploadedAt:  uploaded,
		runs:        ex.Runs,
		sections:    ex.Sections,
	}
}

type cachedAnalysis struct {
	analysis *Analysis
	expires  time.Time
}

// Store holds documents, cached analyses and generated facts in memory.
// It is created at process start and emptied with Clear.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]*Document
	byHash   map[string]string
	analyses map[string]cachedAnalysis
	facts    map[string]map[int][]insight.Fact
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(analysisTTL time.Duration) *Store {
	s := &Store{ttl: analysisTTL, now: time.Now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.docs = make(map[string]*Document)
	s.byHash = make(map[string]string)
	s.analyses = make(map[string]cachedAnalysis)
	s.facts = make(map[string]map[int][]insight.Fact)
}

// Clear drops every document, analysis and fact.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) PutDocument(d *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
	if d.ContentHash != "" {
		s.byHash[d.ContentHash] = d.ID
	}
}

func (s *Store) Document(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, &DocumentNotFoundError{ID: id}
	}
	return d, nil
}

// Documents resolves ids in order, failing on the first unknown one.
func (s *Store) Documents(ids []string) ([]*Document, error) {
	out := make([]*Document, 0, len(ids))
	for _, id := range ids {
		d, err := s.Document(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FindByHash returns the ID of a document with the same content, if any.
func (s *Store) FindByHash(hash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	return id, ok
}

// DeleteDocument removes a document with its facts and every cached
// analysis that included it.
func (s *Store) DeleteDocument(id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, &DocumentNotFoundError{ID: id}
	}
	delete(s.docs, id)
	if s.byHash[d.ContentHash] == id {
		delete(s.byHash, d.ContentHash)
	}
	delete(s.facts, id)
	for key := range s.analyses {
		if slices.Contains(keyIDs(key), id) {
			delete(s.analyses, key)
		}
	}
	return d, nil
}

// ListDocuments returns documents newest first. Empty persona or job
// match everything; otherwise matching is case-insensitive.
func (s *Store) ListDocuments(persona, job string) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		if persona != "" && !strings.EqualFold(d.Persona, persona) {
			continue
		}
		if job != "" && !strings.EqualFold(d.JobToBeDone, job) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Personas returns the distinct non-empty personas of stored documents.
func (s *Store) Personas() []string {
	return s.distinct(func(d *Document) string { return d.Persona })
}

// Jobs returns the distinct non-empty jobs of stored documents.
func (s *Store) Jobs() []string {
	return s.distinct(func(d *Document) string { return d.JobToBeDone })
}

func (s *Store) distinct(field func(*Document) string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	out := []string{}
	for _, d := range s.docs {
		if v := field(d); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// AnalysisKey identifies an analysis by its document set, persona and job.
// Document order does not matter.
func AnalysisKey(ids []string, persona, job string) string {
	sorted := slices.Clone(ids)
	sort.Strings(sorted)
	sorted = slices.Compact(sorted)
	return strings.Join(sorted, ",") + "\x00" + persona + "\x00" + job
}

func keyIDs(key string) []string {
	ids, _, _ := strings.Cut(key, "\x00")
	return strings.Split(ids, ",")
}

func (s *Store) CachedAnalysis(key string) (*Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.analyses[key]
	if !ok || s.now().After(c.expires) {
		return nil, false
	}
	return c.analysis, true
}

func (s *Store) CacheAnalysis(key string, a *Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[key] = cachedAnalysis{analysis: a, expires: s.now().Add(s.ttl)}
}

// SetFacts records generated facts for a document page.
func (s *Store) SetFacts(docID string, page int, facts []insight.Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facts[docID] == nil {
		s.facts[docID] = make(map[int][]insight.Fact)
	}
	s.facts[docID][page] = facts
}

// Facts returns the facts stored for a page and whether the page has been
// processed.
func (s *Store) Facts(docID string, page int) ([]insight.Fact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facts[docID][page]
	return f, ok
}

// Cleanup removes expired analyses.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, c := range s.analyses {
		if now.After(c.expires) {
			delete(s.analyses, key)
		}
	}
}
