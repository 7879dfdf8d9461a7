package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listen settings.
type ServerConfig struct {
	Address string `yaml:"address"` // Listen address, e.g. ":8080"
}

// MilvusConfig holds the connection and collection settings for the
// primary vector index.
type MilvusConfig struct {
	Address          string `yaml:"address"`          // Milvus service address
	CollectionPrefix string `yaml:"collectionPrefix"` // Collection name prefix
	Dim              int    `yaml:"dim"`              // Embedding dimension
	// Ephemeral controls index lifetime. When true the collection name is
	// suffixed with the instance id and dropped on Close, so every agent
	// instance rebuilds its corpus from the source PDFs. When false a
	// stable collection is reused across restarts.
	Ephemeral bool `yaml:"ephemeral"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama", "google" or "openai"
	Model    string `yaml:"model"`    // Model name
	APIKey   string `yaml:"apiKey"`   // API key (google/openai)
	BaseURL  string `yaml:"baseURL"`  // Base URL (ollama)
}

// RedisConfig configures the optional retrieval result cache.
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// WeightsConfig exposes the relevance score weights for tuning. The
// defaults reproduce the empirically chosen blend; none of them is a
// load-bearing invariant.
type WeightsConfig struct {
	KeywordOverlap   float64 `yaml:"keywordOverlap"`
	MetadataMatch    float64 `yaml:"metadataMatch"`
	SectionBonusHigh float64 `yaml:"sectionBonusHigh"`
	SectionBonusLow  float64 `yaml:"sectionBonusLow"`
	TextQuality      float64 `yaml:"textQuality"`
	Semantic         float64 `yaml:"semantic"`
}

// RetrievalConfig tunes ingestion and query behavior.
type RetrievalConfig struct {
	StandardsDir string        `yaml:"standardsDir"` // Root of the standards/{category}/*.pdf layout
	ChunkSize    int           `yaml:"chunkSize"`    // Target chunk size in characters
	MaxPages     int           `yaml:"maxPages"`     // Pages ingested per source file
	DefaultTopK  int           `yaml:"defaultTopK"`  // top_k when the caller does not specify one
	Weights      WeightsConfig `yaml:"weights"`
}

// AppConfig is the root configuration for the retrieval service.
type AppConfig struct {
	LogLevel  string          `yaml:"logLevel"`
	Server    ServerConfig    `yaml:"server"`
	Milvus    MilvusConfig    `yaml:"milvus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Redis     RedisConfig     `yaml:"redis"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Default returns an AppConfig populated with working defaults.
func Default() *AppConfig {
	return &AppConfig{
		LogLevel: "info",
		Server:   ServerConfig{Address: ":8080"},
		Milvus: MilvusConfig{
			Address:          "localhost:19530",
			CollectionPrefix: "standards",
			Dim:              384,
			Ephemeral:        true,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "all-minilm",
		},
		Redis: RedisConfig{
			Address:    "localhost:6379",
			TTLSeconds: 300,
		},
		Retrieval: RetrievalConfig{
			StandardsDir: "standards",
			ChunkSize:    600,
			MaxPages:     15,
			DefaultTopK:  5,
			Weights: WeightsConfig{
				KeywordOverlap:   0.40,
				MetadataMatch:    0.20,
				SectionBonusHigh: 0.15,
				SectionBonusLow:  0.05,
				TextQuality:      0.10,
				Semantic:         0.15,
			},
		},
	}
}

// LoadConfig reads a yaml configuration file and overlays it on the
// defaults. A missing field keeps its default value.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
