package api

import "net/http"

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	svc := s.orchestrator.Insights()
	writeJSON(w, http.StatusOK, map[string]any{
		"available": svc.Available(),
		"stats":     svc.Stats(),
	})
}
