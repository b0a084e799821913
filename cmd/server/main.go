package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsense/internal/api"
	"github.com/dgallion1/docsense/internal/config"
	"github.com/dgallion1/docsense/internal/insight"
	"github.com/dgallion1/docsense/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, closeGen, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Error("initialize generator", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}
	insights := insight.NewService(gen, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewStore(cfg.AnalysisCacheTTL), insights, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain requests before closing the job queue they submit to.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		closeGen()
	}()

	log.Info("starting docsense", "port", cfg.Port, "llm", gen.Name(), "facts", cfg.FactsEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newGenerator builds the configured generative backend and its cleanup.
func newGenerator(ctx context.Context, cfg config.Config) (insight.Generator, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderClaude:
		c := insight.NewClaude(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		return c, c.Close, nil
	case config.ProviderGemini:
		g, err := insight.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return g, func() {}, nil
	case config.ProviderOff:
		return insight.Noop{}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", cfg.LLMProvider)
}
