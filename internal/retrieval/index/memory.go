package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ComplyCheck/internal/retrieval/scorer"
	"ComplyCheck/internal/retrieval/schema"
)

// MemoryIndex is the in-memory fallback backend, used when the vector
// store cannot be initialized or fails at query time. It keeps parallel
// chunk storage plus a per-standard position index and a keyword
// inverted index, and answers queries by a linear scan with composite
// relevance scoring instead of vector distance.
type MemoryIndex struct {
	mu       sync.RWMutex
	weights  scorer.Weights
	chunks   []*schema.Chunk
	ids      map[string]int
	byStd    map[string][]int
	keywords map[string][]int
	built    bool
}

// NewMemoryIndex creates an empty fallback index scoring with the given
// weights.
func NewMemoryIndex(weights scorer.Weights) *MemoryIndex {
	return &MemoryIndex{
		weights:  weights,
		ids:      make(map[string]int),
		byStd:    make(map[string][]int),
		keywords: make(map[string][]int),
	}
}

// Add appends a chunk. Duplicate ids return ErrAlreadyExists and leave
// the existing chunk untouched.
func (m *MemoryIndex) Add(ctx context.Context, chunk *schema.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[chunk.ID]; ok {
		return ErrAlreadyExists
	}

	pos := len(m.chunks)
	m.chunks = append(m.chunks, chunk)
	m.ids[chunk.ID] = pos
	std := chunk.Metadata.StandardID
	m.byStd[std] = append(m.byStd[std], pos)
	m.built = false
	return nil
}

// BuildIndexes rebuilds the keyword inverted index from scratch. Call it
// once after an ingestion batch; queries issued before then still work
// off the linear storage.
func (m *MemoryIndex) BuildIndexes() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keywords = make(map[string][]int)
	for pos, chunk := range m.chunks {
		for _, kw := range strings.Split(chunk.Metadata.Keywords, ",") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				m.keywords[kw] = append(m.keywords[kw], pos)
			}
		}
	}
	m.built = true
}

// Query scans the stored chunks, scores each against the query text and
// returns the best candidates above scorer.RelevanceThreshold, ordered by
// descending score.
func (m *MemoryIndex) Query(ctx context.Context, q Query) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	positions := m.candidatePositions(q.Standards)

	type scored struct {
		cand  Candidate
		score float64
	}
	var matches []scored
	for _, pos := range positions {
		chunk := m.chunks[pos]
		score := m.weights.Score(q.Text, chunk.Text, chunk.Metadata, scorer.FallbackBaseScore)
		if score > scorer.RelevanceThreshold {
			matches = append(matches, scored{
				cand:  Candidate{Chunk: chunk, BaseScore: scorer.FallbackBaseScore},
				score: score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	limit := candidateLimit(q.Limit)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Candidate, len(matches))
	for i, mt := range matches {
		out[i] = mt.cand
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// KeywordCount reports the size of the keyword inverted index, for
// post-ingestion diagnostics.
func (m *MemoryIndex) KeywordCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keywords)
}

func (m *MemoryIndex) candidatePositions(standards []string) []int {
	if len(standards) == 0 {
		positions := make([]int, len(m.chunks))
		for i := range m.chunks {
			positions[i] = i
		}
		return positions
	}

	var positions []int
	for _, std := range standards {
		positions = append(positions, m.byStd[std]...)
	}
	sort.Ints(positions)
	return positions
}

var _ Index = (*MemoryIndex)(nil)
