package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "JOBRADAR_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "ollama.base_url", typ: kString, env: "JOBRADAR_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.embed_model", typ: kString, env: "JOBRADAR_OLLAMA_EMBED_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.EmbedModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.EmbedModel },
	},
	{
		key: "storage.data_dir", typ: kString, env: "JOBRADAR_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "corpus.path", typ: kString, env: "JOBRADAR_CORPUS_PATH",
		apply:   func(cfg *Config, v any) { cfg.Corpus.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Corpus.Path },
	},
	{
		key: "extraction.semantic_threshold", typ: kFloat, env: "JOBRADAR_EXTRACTION_SEMANTIC_THRESHOLD",
		apply:   func(cfg *Config, v any) { cfg.Extraction.SemanticThreshold = v.(float64) },
		extract: func(cfg Config) any { return cfg.Extraction.SemanticThreshold },
	},
	{
		key: "extraction.catalog_path", typ: kString, env: "JOBRADAR_EXTRACTION_CATALOG_PATH",
		apply:   func(cfg *Config, v any) { cfg.Extraction.CatalogPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Extraction.CatalogPath },
	},
	{
		key: "scoring.skill_weight", typ: kFloat, env: "JOBRADAR_SCORING_SKILL_WEIGHT",
		apply:   func(cfg *Config, v any) { cfg.Scoring.SkillWeight = v.(float64) },
		extract: func(cfg Config) any { return cfg.Scoring.SkillWeight },
	},
	{
		key: "scoring.semantic_weight", typ: kFloat, env: "JOBRADAR_SCORING_SEMANTIC_WEIGHT",
		apply:   func(cfg *Config, v any) { cfg.Scoring.SemanticWeight = v.(float64) },
		extract: func(cfg Config) any { return cfg.Scoring.SemanticWeight },
	},
	{
		key: "scoring.min_skill_match", typ: kFloat, env: "JOBRADAR_SCORING_MIN_SKILL_MATCH",
		apply:   func(cfg *Config, v any) { cfg.Scoring.MinSkillMatch = v.(float64) },
		extract: func(cfg Config) any { return cfg.Scoring.MinSkillMatch },
	},
	{
		key: "scoring.top_k", typ: kInt, env: "JOBRADAR_SCORING_TOP_K",
		apply:   func(cfg *Config, v any) { cfg.Scoring.TopK = v.(int) },
		extract: func(cfg Config) any { return cfg.Scoring.TopK },
	},
	{
		key: "log.level", typ: kString, env: "JOBRADAR_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
