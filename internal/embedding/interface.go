package embedding

import "context"

// Embedding is the contract every embedding provider implements. The
// same provider must embed both corpus chunks and queries so the vector
// dimensions and semantics match.
type Embedding interface {
	// Embed produces the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch produces vectors for a batch of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelType enumerates the supported providers.
type ModelType string

const (
	OpenAI ModelType = "openai"
	Google ModelType = "google"
	Ollama ModelType = "ollama"
)
