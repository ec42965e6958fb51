// Package config loads the application configuration from a YAML file with
// sensible defaults and environment-variable overrides for deployment.
package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// QdrantConfig contains connection details for the vector index.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// EmbedderConfig configures embedding generation.
type EmbedderConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// IndexingConfig configures the corpus walk and segmentation windows.
type IndexingConfig struct {
	DataDir       string `yaml:"data_dir"`
	BatchSize     int    `yaml:"batch_size"`
	MaxChunkWords int    `yaml:"max_chunk_words"`
	OverlapWords  int    `yaml:"overlap_words"`
}

// RetrievalConfig configures search curation and prompt selection.
type RetrievalConfig struct {
	TopK      int     `yaml:"top_k"`
	MinScore  float64 `yaml:"min_score"`
	MaxChunks int     `yaml:"max_chunks"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config from path. A missing file yields the defaults. After
// parsing, zero fields are defaulted and QDRANT_HOST, QDRANT_PORT and
// COLLECTION_NAME environment variables override their file counterparts.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "rag_rbac_docs",
		},
		Generator: GeneratorConfig{
			Temperature: 0.2,
		},
		Indexing: IndexingConfig{
			DataDir:       "resources/data",
			BatchSize:     100,
			MaxChunkWords: 400,
			OverlapWords:  50,
		},
		Retrieval: RetrievalConfig{
			TopK:      5,
			MinScore:  0.3,
			MaxChunks: 1,
		},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = def.Qdrant.Host
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = def.Qdrant.Port
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = def.Qdrant.Collection
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = def.Generator.Temperature
	}
	if cfg.Indexing.DataDir == "" {
		cfg.Indexing.DataDir = def.Indexing.DataDir
	}
	if cfg.Indexing.BatchSize == 0 {
		cfg.Indexing.BatchSize = def.Indexing.BatchSize
	}
	if cfg.Indexing.MaxChunkWords == 0 {
		cfg.Indexing.MaxChunkWords = def.Indexing.MaxChunkWords
	}
	if cfg.Indexing.OverlapWords == 0 {
		cfg.Indexing.OverlapWords = def.Indexing.OverlapWords
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = def.Retrieval.MinScore
	}
	if cfg.Retrieval.MaxChunks == 0 {
		cfg.Retrieval.MaxChunks = def.Retrieval.MaxChunks
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		cfg.Qdrant.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Qdrant.Port = port
		}
	}
	if v := os.Getenv("COLLECTION_NAME"); v != "" {
		cfg.Qdrant.Collection = v
	}
}
