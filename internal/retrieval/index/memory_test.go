package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ComplyCheck/internal/retrieval/scorer"
	"ComplyCheck/internal/retrieval/schema"
)

func testChunk(id, text, standard, keywords string) *schema.Chunk {
	return &schema.Chunk{
		ID:   id,
		Text: text,
		Metadata: schema.Metadata{
			StandardID:  standard,
			Keywords:    keywords,
			SectionType: "general",
			TextLength:  len(text),
		},
	}
}

func TestMemoryIndex_AddDuplicate(t *testing.T) {
	idx := NewMemoryIndex(scorer.DefaultWeights)
	ctx := context.Background()

	chunk := testChunk("UU_PDP_p1_c0_ab12cd34", "data pribadi harus dilindungi oleh pengendali", "UU_PDP", "data,pribadi")
	if err := idx.Add(ctx, chunk); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	err := idx.Add(ctx, testChunk("UU_PDP_p1_c0_ab12cd34", "different text, same id", "UU_PDP", ""))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second Add: got %v, want ErrAlreadyExists", err)
	}
	if idx.Count() != 1 {
		t.Errorf("Count() = %d after duplicate Add, want 1", idx.Count())
	}
}

func TestMemoryIndex_QueryEmptyIndex(t *testing.T) {
	idx := NewMemoryIndex(scorer.DefaultWeights)

	got, err := idx.Query(context.Background(), Query{Text: "keamanan data", Limit: 5})
	if err != nil {
		t.Fatalf("Query on empty index: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates from empty index, got %d", len(got))
	}
}

func TestMemoryIndex_StandardFilter(t *testing.T) {
	idx := NewMemoryIndex(scorer.DefaultWeights)
	ctx := context.Background()

	seed := []struct{ id, std string }{
		{"gdpr_p1_c0", "GDPR"},
		{"gdpr_p2_c0", "GDPR"},
		{"pdp_p1_c0", "UU_PDP"},
		{"nist_p1_c0", "NIST"},
	}
	for _, s := range seed {
		if err := idx.Add(ctx, testChunk(s.id, "personal data protection requirements apply", s.std, "data")); err != nil {
			t.Fatalf("Add(%s): %v", s.id, err)
		}
	}

	got, err := idx.Query(ctx, Query{Text: "data protection", Limit: 10, Standards: []string{"GDPR"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 GDPR candidates, got %d", len(got))
	}
	for _, c := range got {
		if c.Chunk.Metadata.StandardID != "GDPR" {
			t.Errorf("candidate %s leaked from standard %q", c.Chunk.ID, c.Chunk.Metadata.StandardID)
		}
	}
}

func TestMemoryIndex_RankingAndBaseScore(t *testing.T) {
	idx := NewMemoryIndex(scorer.DefaultWeights)
	ctx := context.Background()

	relevant := testChunk("pdp_rel", "keamanan data pribadi wajib dijamin oleh pengendali data", "UU_PDP", "data,pribadi,keamanan,pengendali")
	weak := testChunk("pdp_weak", "ketentuan peralihan berlaku sejak tanggal diundangkan", "UU_PDP", "")
	if err := idx.Add(ctx, relevant); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, weak); err != nil {
		t.Fatal(err)
	}

	got, err := idx.Query(ctx, Query{Text: "keamanan data", Limit: 5})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	if got[0].Chunk.ID != "pdp_rel" {
		t.Errorf("top candidate = %s, want pdp_rel", got[0].Chunk.ID)
	}
	for _, c := range got {
		if c.BaseScore != scorer.FallbackBaseScore {
			t.Errorf("candidate %s BaseScore = %f, want %f", c.Chunk.ID, c.BaseScore, scorer.FallbackBaseScore)
		}
	}
}

func TestMemoryIndex_ThresholdExcludes(t *testing.T) {
	// Keyword-only weights make irrelevant chunks score exactly zero, which
	// the relevance threshold drops.
	idx := NewMemoryIndex(scorer.Weights{KeywordOverlap: 1.0})
	ctx := context.Background()

	if err := idx.Add(ctx, testChunk("hit", "data breach notification duties", "GDPR", "")); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(ctx, testChunk("miss", "unrelated transitional provision", "GDPR", "")); err != nil {
		t.Fatal(err)
	}

	got, err := idx.Query(ctx, Query{Text: "breach notification", Limit: 5})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Chunk.ID != "hit" {
		t.Fatalf("expected only the matching chunk, got %d candidates", len(got))
	}
}

func TestMemoryIndex_CandidateCap(t *testing.T) {
	idx := NewMemoryIndex(scorer.DefaultWeights)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		c := testChunk(fmt.Sprintf("c%d", i), "data protection obligations for controllers", "GDPR", "data")
		if err := idx.Add(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	got, err := idx.Query(ctx, Query{Text: "data protection", Limit: 50})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) > maxCandidateFetch {
		t.Errorf("got %d candidates, want at most %d", len(got), maxCandidateFetch)
	}
}

func TestMemoryIndex_BuildIndexes(t *testing.T) {
	idx := NewMemoryIndex(scorer.DefaultWeights)
	ctx := context.Background()

	if err := idx.Add(ctx, testChunk("a", "data pribadi", "UU_PDP", "data,pribadi")); err != nil {
		t.Fatal(err)
	}
	idx.BuildIndexes()
	if n := idx.KeywordCount(); n != 2 {
		t.Errorf("KeywordCount() = %d, want 2", n)
	}

	// A later Add followed by a rebuild picks up the new tags.
	if err := idx.Add(ctx, testChunk("b", "keamanan siber", "BSSN", "keamanan,data")); err != nil {
		t.Fatal(err)
	}
	idx.BuildIndexes()
	if n := idx.KeywordCount(); n != 3 {
		t.Errorf("KeywordCount() after rebuild = %d, want 3", n)
	}
}

func TestCandidateLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 1},
		{1, 2},
		{5, 10},
		{10, 20},
		{50, 20},
	}

	for _, tt := range tests {
		if got := candidateLimit(tt.limit); got != tt.want {
			t.Errorf("candidateLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}
