package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/docsense/internal/insight"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists stored documents, newest first, optionally
// filtered by persona and job_to_be_done.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs := s.orchestrator.Store().ListDocuments(q.Get("persona"), q.Get("job_to_be_done"))
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     len(docs),
	})
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	st := s.orchestrator.Store()
	writeJSON(w, http.StatusOK, map[string]any{
		"personas":        st.Personas(),
		"jobs_to_be_done": st.Jobs(),
		"documents":       len(st.ListDocuments("", "")),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.orchestrator.Store().Document(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleOutline returns the document title and H1-H4 outline. A document
// without text has an empty title and outline.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	doc, err := s.orchestrator.Store().Document(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]any{
		"title":   doc.Title,
		"outline": doc.Outline,
	}
	if len(doc.Runs()) == 0 {
		resp["message"] = "no text could be extracted from this document"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	doc, err := s.orchestrator.Store().Document(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": insight.AnalyzePages(doc.Runs())})
}

// handleFacts returns "did you know" facts for ?page=N, generating them on
// first request.
func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		jsonError(w, "page query parameter must be a positive integer", http.StatusBadRequest)
		return
	}
	docID := chi.URLParam(r, "docID")
	facts, err := s.orchestrator.PageFacts(r.Context(), docID, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if facts == nil {
		facts = []insight.Fact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": docID,
		"page_number": page,
		"facts":       facts,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.orchestrator.DeleteDocument(docID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

// handleClearDocuments empties the document store and analysis cache.
func (s *Server) handleClearDocuments(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.Store().Clear()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
