package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM providers.
const (
	ProviderOff    = "off"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

type Config struct {
	Port string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentDocs int

	// Cache lifetimes
	JobTTL           time.Duration
	AnalysisCacheTTL time.Duration

	// Ranking
	TopKSections int
	MaxSnippets  int
	RelatedLimit int

	// Generative collaborator
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	FactsEnabled    bool
}

// fileConfig is the YAML overlay named by DOCSENSE_CONFIG. API keys are
// only read from the environment.
type fileConfig struct {
	Port              string `yaml:"port"`
	UploadDir         string `yaml:"upload_dir"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	WorkerCount       int    `yaml:"worker_count"`
	MaxQueueSize      int    `yaml:"max_queue_size"`
	MaxConcurrentDocs int    `yaml:"max_concurrent_docs"`
	JobTTL            string `yaml:"job_ttl"`
	AnalysisCacheTTL  string `yaml:"analysis_cache_ttl"`
	Ranking           struct {
		TopKSections int `yaml:"top_k_sections"`
		MaxSnippets  int `yaml:"max_snippets"`
		RelatedLimit int `yaml:"related_limit"`
	} `yaml:"ranking"`
	LLM struct {
		Provider       string `yaml:"provider"`
		AnthropicModel string `yaml:"anthropic_model"`
		GeminiModel    string `yaml:"gemini_model"`
		FactsEnabled   *bool  `yaml:"facts_enabled"`
	} `yaml:"llm"`
}

// Load reads settings from the environment, then applies the YAML file
// named by DOCSENSE_CONFIG if set.
func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		WorkerCount:       envInt("WORKER_COUNT", 4),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentDocs: envInt("MAX_CONCURRENT_DOCS", 4),

		JobTTL:           envDuration("JOB_TTL", 1*time.Hour),
		AnalysisCacheTTL: envDuration("ANALYSIS_CACHE_TTL", 30*time.Minute),

		TopKSections: envInt("TOP_K_SECTIONS", 20),
		MaxSnippets:  envInt("MAX_SNIPPETS", 3),
		RelatedLimit: envInt("RELATED_LIMIT", 3),

		LLMProvider:     envOr("LLM_PROVIDER", ProviderOff),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		FactsEnabled:    envBool("FACTS_ENABLED", false),
	}

	if path := os.Getenv("DOCSENSE_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return cfg, err
		}
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentDocs <= 0 {
		cfg.MaxConcurrentDocs = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.AnalysisCacheTTL <= 0 {
		cfg.AnalysisCacheTTL = 30 * time.Minute
	}

	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.Port, f.Port)
	setString(&c.UploadDir, f.UploadDir)
	setInt64(&c.MaxUploadBytes, f.MaxUploadBytes)
	setInt(&c.WorkerCount, f.WorkerCount)
	setInt(&c.MaxQueueSize, f.MaxQueueSize)
	setInt(&c.MaxConcurrentDocs, f.MaxConcurrentDocs)
	setInt(&c.TopKSections, f.Ranking.TopKSections)
	setInt(&c.MaxSnippets, f.Ranking.MaxSnippets)
	setInt(&c.RelatedLimit, f.Ranking.RelatedLimit)
	setString(&c.LLMProvider, f.LLM.Provider)
	setString(&c.AnthropicModel, f.LLM.AnthropicModel)
	setString(&c.GeminiModel, f.LLM.GeminiModel)
	if f.LLM.FactsEnabled != nil {
		c.FactsEnabled = *f.LLM.FactsEnabled
	}

	for _, d := range []struct {
		dst *time.Duration
		val string
		key string
	}{
		{&c.JobTTL, f.JobTTL, "job_ttl"},
		{&c.AnalysisCacheTTL, f.AnalysisCacheTTL, "analysis_cache_ttl"},
	} {
		if d.val == "" {
			continue
		}
		v, err := time.ParseDuration(d.val)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOff:
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.LLMProvider)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.LLMProvider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.FactsEnabled && c.LLMProvider == ProviderOff {
		return fmt.Errorf("FACTS_ENABLED requires an LLM provider")
	}
	if c.TopKSections <= 0 || c.MaxSnippets <= 0 || c.RelatedLimit <= 0 {
		return fmt.Errorf("ranking limits must be positive")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v != 0 {
		*dst = v
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
