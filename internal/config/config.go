// Package config loads jobradar configuration from a JSON file backend
// with environment-variable overrides.
package config

import (
	"fmt"
)

type Config struct {
	Server     ServerConfig
	Ollama     OllamaConfig
	Storage    StorageConfig
	Corpus     CorpusConfig
	Extraction ExtractionConfig
	Scoring    ScoringConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL    string
	EmbedModel string
}

type StorageConfig struct {
	DataDir string
}

type CorpusConfig struct {
	Path string
}

type ExtractionConfig struct {
	SemanticThreshold float64

	// CatalogPath points at a JSON skill catalog overriding the built-in
	// one. Empty means built-in.
	CatalogPath string
}

type ScoringConfig struct {
	SkillWeight    float64
	SemanticWeight float64
	MinSkillMatch  float64
	TopK           int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			EmbedModel: "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Corpus: CorpusConfig{
			Path: "jobs.csv",
		},
		Extraction: ExtractionConfig{
			SemanticThreshold: 0.5,
		},
		Scoring: ScoringConfig{
			SkillWeight:    0.6,
			SemanticWeight: 0.4,
			MinSkillMatch:  0.3,
			TopK:           10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/jobradar/config.json. Environment variables
// (JOBRADAR_*) override backend values.
func Load() (Config, error) {
	return loadWith(newBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Scoring.SkillWeight < 0 || cfg.Scoring.SemanticWeight < 0 {
		return fmt.Errorf("invalid config: scoring weights must be non-negative")
	}
	if cfg.Scoring.SkillWeight+cfg.Scoring.SemanticWeight == 0 {
		return fmt.Errorf("invalid config: at least one scoring weight must be positive")
	}
	if cfg.Scoring.MinSkillMatch < 0 || cfg.Scoring.MinSkillMatch > 1 {
		return fmt.Errorf("invalid config: scoring.min_skill_match %v out of [0,1]", cfg.Scoring.MinSkillMatch)
	}
	if cfg.Extraction.SemanticThreshold < -1 || cfg.Extraction.SemanticThreshold > 1 {
		return fmt.Errorf("invalid config: extraction.semantic_threshold %v out of [-1,1]", cfg.Extraction.SemanticThreshold)
	}
	if cfg.Scoring.TopK <= 0 {
		return fmt.Errorf("invalid config: scoring.top_k must be positive")
	}
	return nil
}
