package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCSENSE_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.TopKSections != 20 || cfg.MaxSnippets != 3 || cfg.RelatedLimit != 3 {
		t.Errorf("unexpected ranking defaults %d/%d/%d", cfg.TopKSections, cfg.MaxSnippets, cfg.RelatedLimit)
	}
	if cfg.LLMProvider != ProviderOff {
		t.Errorf("expected provider off, got %q", cfg.LLMProvider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_EnvAndInvalidValues(t *testing.T) {
	t.Setenv("DOCSENSE_CONFIG", "")
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("JOB_TTL", "nonsense")
	t.Setenv("TOP_K_SECTIONS", "7")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count reset to 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected default job TTL, got %v", cfg.JobTTL)
	}
	if cfg.TopKSections != 7 {
		t.Errorf("expected top-k 7, got %d", cfg.TopKSections)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsense.yaml")
	data := `
port: "9100"
worker_count: 2
analysis_cache_ttl: 5m
ranking:
  top_k_sections: 10
  related_limit: 5
llm:
  provider: gemini
  facts_enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCSENSE_CONFIG", path)
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9100" || cfg.WorkerCount != 2 {
		t.Errorf("expected overlay port/workers, got %q/%d", cfg.Port, cfg.WorkerCount)
	}
	if cfg.AnalysisCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache TTL, got %v", cfg.AnalysisCacheTTL)
	}
	if cfg.TopKSections != 10 || cfg.RelatedLimit != 5 || cfg.MaxSnippets != 3 {
		t.Errorf("unexpected ranking %d/%d/%d", cfg.TopKSections, cfg.MaxSnippets, cfg.RelatedLimit)
	}
	if cfg.LLMProvider != ProviderGemini || !cfg.FactsEnabled {
		t.Errorf("expected gemini with facts, got %q/%v", cfg.LLMProvider, cfg.FactsEnabled)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("job_ttl: forever\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCSENSE_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("expected error for bad duration")
	}

	t.Setenv("DOCSENSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{UploadDir: "u", TopKSections: 20, MaxSnippets: 3, RelatedLimit: 3, LLMProvider: ProviderOff}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown provider", func(c *Config) { c.LLMProvider = "gpt" }, true},
		{"claude without key", func(c *Config) { c.LLMProvider = ProviderClaude }, true},
		{"claude with key", func(c *Config) { c.LLMProvider = ProviderClaude; c.AnthropicAPIKey = "k" }, false},
		{"facts without provider", func(c *Config) { c.FactsEnabled = true }, true},
		{"zero top-k", func(c *Config) { c.TopKSections = 0 }, true},
		{"no upload dir", func(c *Config) { c.UploadDir = "" }, true},
	}
	for _, tt := range tests {
		c := base
		tt.mutate(&c)
		if err := c.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
