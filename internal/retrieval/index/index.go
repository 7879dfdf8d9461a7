package index

import (
	"context"
	"errors"

	"ComplyCheck/internal/retrieval/schema"
)

// ErrAlreadyExists reports that a chunk id is already present in the
// index. Callers treat it as "already indexed", not as a failure.
var ErrAlreadyExists = errors.New("chunk id already exists")

// maxCandidateFetch caps how many candidates a query requests from the
// backend regardless of limit.
const maxCandidateFetch = 20

// Candidate is one pre-ranked chunk returned by an index query.
type Candidate struct {
	Chunk *schema.Chunk
	// BaseScore is the backend's semantic similarity in [0,1]. The
	// fallback backend reports scorer.FallbackBaseScore since it
	// performs no embedding comparison.
	BaseScore float64
}

// Query describes one candidate fetch.
type Query struct {
	// Text is the raw query string, used by lexical backends.
	Text string
	// Embedding is the query vector. Nil on the fallback path.
	Embedding []float32
	// Limit is the caller's top-k. Backends over-fetch up to
	// candidateLimit(Limit) to give the scorer room to re-rank and
	// deduplicate before truncation.
	Limit int
	// Standards restricts candidates to these standard ids when
	// non-empty.
	Standards []string
}

// Index stores embedded chunks and serves nearest-neighbor candidates.
// Implementations must tolerate queries against an empty index (empty
// result, nil error) and reflect chunks added after earlier queries.
type Index interface {
	Add(ctx context.Context, chunk *schema.Chunk) error
	Query(ctx context.Context, q Query) ([]Candidate, error)
	Count() int
}

// candidateLimit doubles the caller's limit, capped at maxCandidateFetch.
func candidateLimit(limit int) int {
	n := limit * 2
	if n > maxCandidateFetch {
		n = maxCandidateFetch
	}
	if n < 1 {
		n = 1
	}
	return n
}
