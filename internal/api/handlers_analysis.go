package api

import (
	"net/http"
	"strings"

	"github.com/dgallion1/docsense/internal/rank"
)

type analyzeRequest struct {
	DocumentIDs []string `json:"document_ids"`
	Persona     string   `json:"persona"`
	JobToBeDone string   `json:"job_to_be_done"`
}

type relatedRequest struct {
	DocumentIDs     []string `json:"document_ids"`
	CurrentPage     int      `json:"current_page"`
	CurrentDocument string   `json:"current_document"`
	CurrentSection  string   `json:"current_section"`
	Persona         string   `json:"persona"`
	JobToBeDone     string   `json:"job_to_be_done"`
	Limit           int      `json:"limit"`
}

type insightsRequest struct {
	Text        string `json:"text"`
	Persona     string `json:"persona"`
	JobToBeDone string `json:"job_to_be_done"`
	Context     string `json:"context"`
}

// documentIDs returns ids, or every stored document when ids is empty.
func (s *Server) documentIDs(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}
	docs := s.orchestrator.Store().ListDocuments("", "")
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

// handleAnalyze ranks sections of the selected documents, or of the whole
// library when no IDs are given, for a persona and job.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ids := s.documentIDs(req.DocumentIDs)
	if len(ids) == 0 {
		jsonError(w, "no documents uploaded", http.StatusNotFound)
		return
	}

	a, err := s.orchestrator.Analyze(ids, req.Persona, req.JobToBeDone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(a.ExtractedSections) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"analysis": a,
			"message":  "no sections found in the selected documents",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": a})
}

// handleRelated suggests sections to read next from the reader's position.
func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	var req relatedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPage < 1 {
		jsonError(w, "current_page must be a positive integer", http.StatusBadRequest)
		return
	}
	if req.Limit < 0 {
		jsonError(w, "limit must not be negative", http.StatusBadRequest)
		return
	}
	ids := s.documentIDs(req.DocumentIDs)
	if len(ids) == 0 {
		jsonError(w, "no documents uploaded", http.StatusNotFound)
		return
	}

	related, err := s.orchestrator.Related(ids, rank.RelatedRequest{
		CurrentPage:     req.CurrentPage,
		CurrentDocument: req.CurrentDocument,
		CurrentSection:  req.CurrentSection,
		Persona:         req.Persona,
		Job:             req.JobToBeDone,
		Limit:           req.Limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]any{"related_sections": related}
	if len(related) == 0 {
		resp["message"] = "no related sections found"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInsights asks the generative service for labelled insights about
// a passage.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	insights, err := s.orchestrator.Insights().Insights(r.Context(), req.Text, req.Persona, req.JobToBeDone, req.Context)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}
