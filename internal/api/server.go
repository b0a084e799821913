package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docsense/internal/config"
	"github.com/dgallion1/docsense/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docsense.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", s.handleUpload)
		r.Get("/documents", s.handleListDocuments)
		r.Delete("/documents", s.handleClearDocuments)
		r.Get("/documents/{docID}", s.handleGetDocument)
		r.Delete("/documents/{docID}", s.handleDeleteDocument)
		r.Get("/documents/{docID}/outline", s.handleOutline)
		r.Get("/documents/{docID}/pages", s.handlePages)
		r.Get("/documents/{docID}/facts", s.handleFacts)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Get("/library", s.handleLibrary)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/related-sections", s.handleRelated)
		r.Post("/insights", s.handleInsights)

		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
		"llm":         s.orchestrator.Insights().Available(),
	})
}
