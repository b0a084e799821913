package pipeline

import (
	"time"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/rank"
	"github.com/dgallion1/docsense/internal/relevance"
)

// Metadata describes one analysis run.
type Metadata struct {
	InputDocuments      []string  `json:"input_documents"`
	Persona             string    `json:"persona"`
	JobToBeDone         string    `json:"job_to_be_done"`
	ProcessingTimestamp time.Time `json:"processing_timestamp"`
}

// ExtractedSection is a selected section without its body text.
type ExtractedSection struct {
	Document       string  `json:"document"`
	SectionTitle   string  `json:"section_title"`
	ImportanceRank int     `json:"importance_rank"`
	PageNumber     int     `json:"page_number"`
	RelevanceScore float64 `json:"relevance_score"`
}

// DocumentError reports a document left out of an analysis.
type DocumentError struct {
	Document string `json:"document"`
	Error    string `json:"error"`
}

// Analysis is the ranked view of a document set for one persona and task.
type Analysis struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []doctree.Snippet  `json:"subsection_analysis"`
	Errors             []DocumentError    `json:"errors,omitempty"`

	// Ranked holds every section with its score and rank, the input to
	// related-section lookups.
	Ranked []doctree.ScoredSection `json:"-"`
}

// Analyze ranks the sections of every successful extraction against the
// persona and job, keeps the top sections and their best snippets, and
// lists failed documents.
func Analyze(scorer *relevance.Scorer, docs []Extraction, persona, job string, opts rank.Options, now time.Time) *Analysis {
	a := &Analysis{
		Metadata: Metadata{
			InputDocuments:      make([]string, 0, len(docs)),
			Persona:             persona,
			JobToBeDone:         job,
			ProcessingTimestamp: now,
		},
		ExtractedSections:  []ExtractedSection{},
		SubsectionAnalysis: []doctree.Snippet{},
	}

	var all []doctree.Section
	for _, d := range docs {
		a.Metadata.InputDocuments = append(a.Metadata.InputDocuments, d.Name)
		if d.Err != nil {
			a.Errors = append(a.Errors, DocumentError{Document: d.Name, Error: d.Err.Error()})
			continue
		}
		all = append(all, d.Sections...)
	}

	q := relevance.NewQuery(persona, job)
	a.Ranked = rank.Rank(scorer, q, all)
	for _, sel := range rank.Select(scorer, q, a.Ranked, opts) {
		a.ExtractedSections = append(a.ExtractedSections, ExtractedSection{
			Document:       sel.Document,
			SectionTitle:   sel.Heading,
			ImportanceRank: sel.Rank,
			PageNumber:     sel.Page,
			RelevanceScore: sel.Score,
		})
		a.SubsectionAnalysis = append(a.SubsectionAnalysis, sel.Snippets...)
	}
	return a
}

// Related re-ranks the analysed sections around the reader's position.
// Persona and job default to the analysis' own.
func (a *Analysis) Related(scorer *relevance.Scorer, req rank.RelatedRequest) []rank.Related {
	if req.Persona == "" && req.Job == "" {
		req.Persona = a.Metadata.Persona
		req.Job = a.Metadata.JobToBeDone
	}
	return rank.FindRelated(scorer, req, a.Ranked)
}
