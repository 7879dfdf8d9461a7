package index

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	milvusdb "ComplyCheck/internal/database/milvus"
	"ComplyCheck/internal/retrieval/schema"
	"ComplyCheck/pkg/logger"
)

// Collection field names. Every metadata field the scorer or the dedup
// step needs is stored as its own column so it can be filtered and
// returned without a secondary lookup.
const (
	fieldID           = "id"
	fieldEmbedding    = "embedding"
	fieldChunk        = "chunk"
	fieldStandard     = "ui_standard"
	fieldStandardType = "standard_type"
	fieldCategory     = "category"
	fieldSource       = "source"
	fieldArticle      = "article"
	fieldSectionType  = "section_type"
	fieldKeywords     = "keywords"
	fieldFullName     = "full_name"
	fieldJurisdiction = "jurisdiction"
	fieldFocusAreas   = "focus_areas"
	fieldPage         = "page"
	fieldTextLength   = "text_length"
)

var outputFields = []string{
	fieldID, fieldChunk, fieldStandard, fieldStandardType, fieldCategory,
	fieldSource, fieldArticle, fieldSectionType, fieldKeywords,
	fieldFullName, fieldJurisdiction, fieldFocusAreas, fieldPage,
	fieldTextLength,
}

// MilvusIndex is the primary vector-store backend.
type MilvusIndex struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
	ephemeral  bool

	mu       sync.Mutex
	inserted map[string]struct{}
}

// NewMilvusIndex creates (or reuses) the collection and loads it for
// search. With an ephemeral configuration the collection name carries the
// instance id so each retriever instance owns a fresh corpus.
func NewMilvusIndex(ctx context.Context, mc *milvusdb.Client, instanceID string, log *logger.Logger) (*MilvusIndex, error) {
	if mc == nil || mc.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}

	collection := mc.Config.CollectionPrefix
	if mc.Config.Ephemeral {
		collection = fmt.Sprintf("%s_%s", mc.Config.CollectionPrefix, instanceID)
	}

	idx := &MilvusIndex{
		log:        log,
		client:     mc.Client,
		collection: collection,
		dim:        mc.Config.Dim,
		ephemeral:  mc.Config.Ephemeral,
		inserted:   make(map[string]struct{}),
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *MilvusIndex) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}

	if !exists {
		varchar := func(name string, maxLen int64) *entity.Field {
			return entity.NewField().WithName(name).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxLen)
		}

		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("regulatory standard chunks").
			WithField(varchar(fieldID, 256).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim))).
			WithField(varchar(fieldChunk, 4096)).
			WithField(varchar(fieldStandard, 64)).
			WithField(varchar(fieldStandardType, 64)).
			WithField(varchar(fieldCategory, 32)).
			WithField(varchar(fieldSource, 256)).
			WithField(varchar(fieldArticle, 128)).
			WithField(varchar(fieldSectionType, 32)).
			WithField(varchar(fieldKeywords, 512)).
			WithField(varchar(fieldFullName, 256)).
			WithField(varchar(fieldJurisdiction, 128)).
			WithField(varchar(fieldFocusAreas, 512)).
			WithField(entity.NewField().WithName(fieldPage).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(fieldTextLength).WithDataType(entity.FieldTypeInt64))

		if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to build index definition: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, fieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", s.collection, err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", s.collection, err)
	}
	return nil
}

// Add inserts one chunk. A duplicate id returns ErrAlreadyExists without
// touching the stored row.
func (s *MilvusIndex) Add(ctx context.Context, chunk *schema.Chunk) error {
	s.mu.Lock()
	if _, ok := s.inserted[chunk.ID]; ok {
		s.mu.Unlock()
		return ErrAlreadyExists
	}
	s.inserted[chunk.ID] = struct{}{}
	s.mu.Unlock()

	md := chunk.Metadata
	cols := []entity.Column{
		entity.NewColumnVarChar(fieldID, []string{chunk.ID}),
		entity.NewColumnFloatVector(fieldEmbedding, s.dim, [][]float32{chunk.Embedding}),
		entity.NewColumnVarChar(fieldChunk, []string{chunk.Text}),
		entity.NewColumnVarChar(fieldStandard, []string{md.StandardID}),
		entity.NewColumnVarChar(fieldStandardType, []string{md.StandardType}),
		entity.NewColumnVarChar(fieldCategory, []string{md.Category}),
		entity.NewColumnVarChar(fieldSource, []string{md.Source}),
		entity.NewColumnVarChar(fieldArticle, []string{md.Article}),
		entity.NewColumnVarChar(fieldSectionType, []string{md.SectionType}),
		entity.NewColumnVarChar(fieldKeywords, []string{md.Keywords}),
		entity.NewColumnVarChar(fieldFullName, []string{md.FullName}),
		entity.NewColumnVarChar(fieldJurisdiction, []string{md.Jurisdiction}),
		entity.NewColumnVarChar(fieldFocusAreas, []string{md.FocusAreas}),
		entity.NewColumnInt64(fieldPage, []int64{int64(md.Page)}),
		entity.NewColumnInt64(fieldTextLength, []int64{int64(md.TextLength)}),
	}

	if _, err := s.client.Insert(ctx, s.collection, "", cols...); err != nil {
		s.mu.Lock()
		delete(s.inserted, chunk.ID)
		s.mu.Unlock()
		if strings.Contains(strings.ToLower(err.Error()), "already exist") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert chunk into milvus: %w", err)
	}
	return nil
}

// Query performs a vector search, over-fetching candidates so the caller
// can re-rank and deduplicate before truncating to the requested limit.
func (s *MilvusIndex) Query(ctx context.Context, q Query) ([]Candidate, error) {
	if len(q.Embedding) == 0 {
		return nil, fmt.Errorf("milvus query requires an embedding")
	}
	if s.Count() == 0 {
		return nil, nil
	}

	expr := buildStandardFilter(q.Standards)
	sp, _ := entity.NewIndexIvfFlatSearchParam(10)

	results, err := s.client.Search(
		ctx, s.collection, []string{}, expr, outputFields,
		[]entity.Vector{entity.FloatVector(q.Embedding)},
		fieldEmbedding, entity.COSINE, candidateLimit(q.Limit), sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	var candidates []Candidate
	for _, res := range results {
		strCol := func(name string) []string {
			for _, field := range res.Fields {
				if field.Name() == name {
					if col, ok := field.(*entity.ColumnVarChar); ok {
						return col.Data()
					}
				}
			}
			return nil
		}
		intCol := func(name string) []int64 {
			for _, field := range res.Fields {
				if field.Name() == name {
					if col, ok := field.(*entity.ColumnInt64); ok {
						return col.Data()
					}
				}
			}
			return nil
		}

		ids := strCol(fieldID)
		texts := strCol(fieldChunk)
		if ids == nil || texts == nil {
			s.log.Warn("Search result is missing id or chunk column, skipping")
			continue
		}
		standards := strCol(fieldStandard)
		standardTypes := strCol(fieldStandardType)
		categories := strCol(fieldCategory)
		sources := strCol(fieldSource)
		articles := strCol(fieldArticle)
		sectionTypes := strCol(fieldSectionType)
		keywords := strCol(fieldKeywords)
		fullNames := strCol(fieldFullName)
		jurisdictions := strCol(fieldJurisdiction)
		focusAreas := strCol(fieldFocusAreas)
		pages := intCol(fieldPage)
		textLengths := intCol(fieldTextLength)

		at := func(vals []string, i int) string {
			if i < len(vals) {
				return vals[i]
			}
			return ""
		}
		atInt := func(vals []int64, i int) int {
			if i < len(vals) {
				return int(vals[i])
			}
			return 0
		}

		for i := 0; i < res.ResultCount; i++ {
			chunk := &schema.Chunk{
				ID:   ids[i],
				Text: texts[i],
				Metadata: schema.Metadata{
					Source:       at(sources, i),
					Category:     at(categories, i),
					Page:         atInt(pages, i),
					StandardID:   at(standards, i),
					StandardType: at(standardTypes, i),
					FullName:     at(fullNames, i),
					Jurisdiction: at(jurisdictions, i),
					FocusAreas:   at(focusAreas, i),
					TextLength:   atInt(textLengths, i),
					Keywords:     at(keywords, i),
					SectionType:  at(sectionTypes, i),
					Article:      at(articles, i),
				},
			}
			candidates = append(candidates, Candidate{
				Chunk:     chunk,
				BaseScore: clampScore(float64(res.Scores[i])),
			})
		}
	}

	return candidates, nil
}

// Count returns the number of chunks inserted through this instance.
func (s *MilvusIndex) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

// Close drops the collection when the index is ephemeral.
func (s *MilvusIndex) Close(ctx context.Context) error {
	if !s.ephemeral {
		return nil
	}
	if err := s.client.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", s.collection, err)
	}
	return nil
}

// buildStandardFilter creates a Milvus filter expression restricting
// candidates to an allow-list of standard ids.
func buildStandardFilter(standards []string) string {
	if len(standards) == 0 {
		return ""
	}
	quoted := make([]string, len(standards))
	for i, std := range standards {
		quoted[i] = fmt.Sprintf("%q", std)
	}
	return fmt.Sprintf("%s in [%s]", fieldStandard, strings.Join(quoted, ", "))
}

// clampScore bounds a cosine similarity into [0,1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

var _ Index = (*MilvusIndex)(nil)
