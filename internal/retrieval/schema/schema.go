package schema

// Standard categories as laid out under the standards root directory.
const (
	CategoryGlobal   = "Global"
	CategoryNasional = "Nasional"
)

// Metadata describes a chunk of regulation text. It is derived once at
// ingestion time and never mutated afterwards.
type Metadata struct {
	// Source is the file name the chunk was extracted from.
	Source string `json:"source"`
	// Category is the standards directory category (Global or Nasional).
	Category string `json:"category"`
	// Page is the 1-based page number within the source file.
	Page int `json:"page"`
	// Ordinal is the 1-based chunk position within the page.
	Ordinal int `json:"chunk"`
	// StandardID is the catalog id the chunk belongs to (e.g. "GDPR").
	StandardID string `json:"ui_standard"`
	// StandardType is the id resolved from the source file name. It
	// normally equals StandardID but can differ for unknown files.
	StandardType string `json:"standard_type"`
	// FullName is the display name of the owning standard.
	FullName string `json:"full_name"`
	// Jurisdiction of the owning standard.
	Jurisdiction string `json:"jurisdiction"`
	// FocusAreas is the comma-joined focus-area list of the standard.
	FocusAreas string `json:"focus_areas"`
	// TextLength is len(chunk text) at ingestion time.
	TextLength int `json:"text_length"`
	// Keywords is a comma-joined list of at most 10 vocabulary terms
	// present in the chunk text.
	Keywords string `json:"keywords"`
	// SectionType classifies the chunk (definition, obligation,
	// prohibition, procedure, penalty, right or general).
	SectionType string `json:"section_type"`
	// Article is the extracted section reference, e.g. "Article 6" or
	// "Pasal 26". Never empty: falls back to "Page N".
	Article string `json:"article"`
}

// Chunk is the unit of retrievable text.
type Chunk struct {
	// ID is unique within one index instance, derived from
	// source file + page + ordinal + instance id.
	ID string

	// Text is the cleaned chunk content (50-1200 characters).
	Text string

	// Embedding is the vector representation of Text. Nil on the
	// fallback path, which performs no embedding comparison.
	Embedding []float32

	Metadata Metadata
}

// RetrievedStandard is one ranked passage of a retrieval response.
// It is ephemeral and recomputed per query.
type RetrievedStandard struct {
	Rank               int     `json:"rank"`
	Content            string  `json:"content"`
	Source             string  `json:"source"`
	Article            string  `json:"article"`
	StandardType       string  `json:"standard_type"`
	UIStandard         string  `json:"ui_standard"`
	FullName           string  `json:"full_name"`
	SectionType        string  `json:"section_type"`
	RelevanceScore     float64 `json:"relevance_score"`
	SemanticSimilarity float64 `json:"semantic_similarity,omitempty"`
	KeywordsMatched    int     `json:"keywords_matched"`
	TextLength         int     `json:"text_length"`
}

// RetrievalResult is the successful-shaped response of every retrieval,
// including degraded ones. Error carries the diagnostic when the result
// is empty because something went wrong internally.
type RetrievalResult struct {
	Success   bool                `json:"success"`
	Standards []RetrievedStandard `json:"standards"`
	Query     string              `json:"query"`
	Method    string              `json:"method,omitempty"`
	Message   string              `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// StandardInfo summarizes one ingested standard for availability listings.
type StandardInfo struct {
	FullName     string   `json:"full_name"`
	Jurisdiction string   `json:"jurisdiction"`
	FocusAreas   []string `json:"focus_areas"`
	ChunkCount   int      `json:"chunk_count"`
}
