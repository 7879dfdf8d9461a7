package retriever

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"ComplyCheck/internal/config"
	"ComplyCheck/internal/embedding"
	"ComplyCheck/internal/retrieval/catalog"
	"ComplyCheck/internal/retrieval/index"
	"ComplyCheck/internal/retrieval/loaders"
	"ComplyCheck/internal/retrieval/schema"
	"ComplyCheck/internal/retrieval/scorer"
	"ComplyCheck/internal/retrieval/textproc"
	"ComplyCheck/pkg/logger"
)

// Query methods reported in retrieval results.
const (
	methodMilvus   = "milvus"
	methodFallback = "fallback"
)

// Shown instead of an empty list so chat surfaces have something to say.
const noStandardsMessage = "Tidak ada standar yang relevan ditemukan untuk pertanyaan ini. " +
	"Silakan cek hasil analisis atau tanyakan hal lain."

// Candidates this short on the vector path are citation noise.
const minCandidateChars = 30

// Retriever ingests regulatory standards on demand and serves top-k
// relevant passages. One instance owns one index for its lifetime; the
// corpus is rebuilt from the source PDFs whenever a fresh instance
// ingests standards.
type Retriever struct {
	log      *logger.Logger
	cfg      config.RetrievalConfig
	loader   loaders.Loader
	embedder embedding.Embedding // nil in fallback-only mode
	primary  index.Index         // nil in fallback-only mode
	fallback *index.MemoryIndex
	weights  scorer.Weights

	instanceID string
	loaded     bool
	stats      map[string]map[string]*standardStats // category -> standard id
}

type standardStats struct {
	def    catalog.StandardDefinition
	chunks int
}

// New creates a Retriever. embedder and primary may both be nil, in
// which case every query runs on the in-memory fallback backend; passing
// only one of them is a configuration error.
func New(cfg config.RetrievalConfig, loader loaders.Loader, embedder embedding.Embedding, primary index.Index, log *logger.Logger) (*Retriever, error) {
	if (embedder == nil) != (primary == nil) {
		return nil, fmt.Errorf("embedder and primary index must be provided together")
	}

	weights := weightsFromConfig(cfg.Weights)
	return &Retriever{
		log:        log,
		cfg:        cfg,
		loader:     loader,
		embedder:   embedder,
		primary:    primary,
		fallback:   index.NewMemoryIndex(weights),
		weights:    weights,
		instanceID: uuid.New().String()[:8],
		stats:      make(map[string]map[string]*standardStats),
	}, nil
}

// InstanceID returns the short id that disambiguates chunk ids and
// ephemeral collection names of this instance.
func (r *Retriever) InstanceID() string {
	return r.instanceID
}

// LoadSelectedStandards ingests the source files of the requested
// standard ids. It returns the number of successfully processed files
// and a list of soft errors (unknown ids, missing files, extraction
// failures); ingestion of the remaining standards continues past each
// error.
func (r *Retriever) LoadSelectedStandards(ctx context.Context, ids []string) (int, []string) {
	r.log.Info(fmt.Sprintf("Loading standards: %v", ids))

	if len(ids) == 0 {
		r.log.Warn("No standards requested")
		return 0, nil
	}

	if _, err := os.Stat(r.cfg.StandardsDir); err != nil {
		r.log.Error(fmt.Sprintf("Standards directory not found: %s", r.cfg.StandardsDir))
		return 0, []string{fmt.Sprintf("standards directory not found: %s", r.cfg.StandardsDir)}
	}

	loaded := 0
	var errs []string
	for _, id := range ids {
		def, ok := catalog.Lookup(id)
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown standard: %s", id))
			r.log.Warn(fmt.Sprintf("Unknown standard: %s", id))
			continue
		}

		for _, filename := range def.Files {
			path, found := r.resolvePath(def.Category, filename)
			if !found {
				errs = append(errs, fmt.Sprintf("file not found: %s", filepath.Join(r.cfg.StandardsDir, def.Category, filename)))
				continue
			}

			chunks, err := r.ingestFile(ctx, path, def, filename)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", filename, err))
				continue
			}
			loaded++
			r.log.Info(fmt.Sprintf("Ingested %s for %s: %d chunks", filename, id, chunks))
		}
	}

	r.finishIngestion()
	r.log.WithPayload(map[string]interface{}{
		"loaded": loaded,
		"errors": len(errs),
	}).Info("Standards loading completed")
	return loaded, errs
}

// LoadStandardsFromDirectory ingests every PDF found under the standards
// root. A missing directory is not an error; it just leaves the index
// empty.
func (r *Retriever) LoadStandardsFromDirectory(ctx context.Context) (int, []string) {
	loaded := 0
	var errs []string

	for _, category := range []string{schema.CategoryGlobal, schema.CategoryNasional} {
		categoryPath := filepath.Join(r.cfg.StandardsDir, category)
		entries, err := os.ReadDir(categoryPath)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
				continue
			}

			def, ok := catalog.FromFilename(entry.Name())
			if !ok {
				def = catalog.StandardDefinition{
					ID:           "Unknown",
					Category:     category,
					FullName:     strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
					Jurisdiction: "Unknown",
				}
			}
			def.Category = category

			chunks, err := r.ingestFile(ctx, filepath.Join(categoryPath, entry.Name()), def, entry.Name())
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", entry.Name(), err))
				continue
			}
			loaded++
			r.log.Info(fmt.Sprintf("Ingested %s: %d chunks", entry.Name(), chunks))
		}
	}

	r.finishIngestion()
	return loaded, errs
}

// Retrieve returns up to topK passages relevant to the query, optionally
// restricted to selected standard ids. Standards not yet ingested are
// loaded on demand. Internal failures degrade to an empty successful
// result with the diagnostic in Error; they never propagate, so the
// hosting compliance pass proceeds with reduced evidence instead of
// aborting.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, selected []string) (result schema.RetrievalResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error(fmt.Sprintf("Retrieval panicked: %v", rec))
			result = schema.RetrievalResult{
				Success:   true,
				Standards: []schema.RetrievedStandard{},
				Query:     query,
				Error:     fmt.Sprintf("%v", rec),
			}
		}
	}()

	r.log.Info(fmt.Sprintf("Retrieval started: %.100q", query))

	if topK <= 0 {
		return schema.RetrievalResult{
			Success:   true,
			Standards: []schema.RetrievedStandard{},
			Query:     query,
		}
	}

	if len(selected) > 0 && !r.loaded {
		loaded, _ := r.LoadSelectedStandards(ctx, selected)
		r.log.Info(fmt.Sprintf("Standards loaded on demand: %d files", loaded))
	} else if !r.loaded {
		r.LoadStandardsFromDirectory(ctx)
	}

	candidates, method, err := r.fetchCandidates(ctx, query, topK, selected)
	if err != nil {
		r.log.Error(fmt.Sprintf("Candidate fetch failed: %v", err))
		return schema.RetrievalResult{
			Success:   true,
			Standards: []schema.RetrievedStandard{},
			Query:     query,
			Error:     err.Error(),
		}
	}

	standards := r.rank(query, topK, method, candidates)

	res := schema.RetrievalResult{
		Success:   true,
		Standards: standards,
		Query:     query,
		Method:    method,
	}
	if len(standards) == 0 {
		res.Message = noStandardsMessage
	}

	r.log.Info(fmt.Sprintf("Retrieval completed: %d standards via %s", len(standards), method))
	return res
}

// GetAvailableStandards lists the ingested standards grouped by category
// with chunk counts. Standards are auto-loaded from the directory if
// nothing has been ingested yet.
func (r *Retriever) GetAvailableStandards(ctx context.Context) map[string]map[string]schema.StandardInfo {
	if !r.loaded {
		r.LoadStandardsFromDirectory(ctx)
	}

	out := make(map[string]map[string]schema.StandardInfo)
	for category, byID := range r.stats {
		out[category] = make(map[string]schema.StandardInfo)
		for id, st := range byID {
			out[category][id] = schema.StandardInfo{
				FullName:     st.def.FullName,
				Jurisdiction: st.def.Jurisdiction,
				FocusAreas:   st.def.FocusAreas,
				ChunkCount:   st.chunks,
			}
		}
	}
	return out
}

// fetchCandidates queries the primary backend and falls back to the
// in-memory index when the primary is unavailable or fails mid-query.
func (r *Retriever) fetchCandidates(ctx context.Context, query string, topK int, selected []string) ([]index.Candidate, string, error) {
	if r.primary != nil {
		emb, err := r.embedder.Embed(ctx, query)
		if err == nil {
			candidates, qerr := r.primary.Query(ctx, index.Query{
				Text:      query,
				Embedding: emb,
				Limit:     topK,
				Standards: selected,
			})
			if qerr == nil {
				return candidates, methodMilvus, nil
			}
			r.log.Warn(fmt.Sprintf("Primary index query failed, using fallback: %v", qerr))
		} else {
			r.log.Warn(fmt.Sprintf("Query embedding failed, using fallback: %v", err))
		}
	}

	candidates, err := r.fallback.Query(ctx, index.Query{
		Text:      query,
		Limit:     topK,
		Standards: selected,
	})
	if err != nil {
		return nil, methodFallback, err
	}
	return candidates, methodFallback, nil
}

// rank scores the candidates, deduplicates by section reference in score
// order and truncates to topK with 1-based ranks.
func (r *Retriever) rank(query string, topK int, method string, candidates []index.Candidate) []schema.RetrievedStandard {
	type scored struct {
		cand  index.Candidate
		score float64
	}

	items := make([]scored, 0, len(candidates))
	for _, cand := range candidates {
		if method == methodMilvus && len(strings.TrimSpace(cand.Chunk.Text)) <= minCandidateChars {
			continue
		}
		items = append(items, scored{
			cand:  cand,
			score: r.weights.Score(query, cand.Chunk.Text, cand.Chunk.Metadata, cand.BaseScore),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	seenArticles := make(map[string]bool)
	standards := make([]schema.RetrievedStandard, 0, topK)
	for _, item := range items {
		md := item.cand.Chunk.Metadata
		if seenArticles[md.Article] {
			continue
		}
		seenArticles[md.Article] = true

		rs := schema.RetrievedStandard{
			Rank:            len(standards) + 1,
			Content:         item.cand.Chunk.Text,
			Source:          md.Source,
			Article:         md.Article,
			StandardType:    md.StandardType,
			UIStandard:      md.StandardID,
			FullName:        md.FullName,
			SectionType:     md.SectionType,
			RelevanceScore:  item.score,
			KeywordsMatched: scorer.CountKeywordMatches(query, md.Keywords),
			TextLength:      md.TextLength,
		}
		if method == methodMilvus {
			rs.SemanticSimilarity = item.cand.BaseScore
		}
		standards = append(standards, rs)

		if len(standards) == topK {
			break
		}
	}
	return standards
}

// ingestFile extracts, cleans, chunks, annotates and indexes one source
// file. Only the first MaxPages pages are processed; compliance documents
// rarely need deeper citation and the cap bounds ingestion latency.
func (r *Retriever) ingestFile(ctx context.Context, path string, def catalog.StandardDefinition, filename string) (int, error) {
	pages, err := r.loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, page := range pages {
		if page.Number > r.cfg.MaxPages {
			break
		}

		cleaned := textproc.Clean(page.Text)
		if len(strings.TrimSpace(cleaned)) <= 100 {
			continue
		}

		for i, text := range textproc.Split(cleaned, r.cfg.ChunkSize) {
			chunk := &schema.Chunk{
				ID:       fmt.Sprintf("%s_p%d_c%d_%s", filename, page.Number, i+1, r.instanceID),
				Text:     text,
				Metadata: textproc.Annotate(text, page.Number, i+1, def, filename),
			}

			if r.primary != nil {
				emb, err := r.embedder.Embed(ctx, text)
				if err != nil {
					r.log.Warn(fmt.Sprintf("Embedding failed for %s: %v", chunk.ID, err))
					continue
				}
				chunk.Embedding = emb

				if err := r.primary.Add(ctx, chunk); err != nil {
					if errors.Is(err, index.ErrAlreadyExists) {
						r.log.Debug(fmt.Sprintf("Chunk already indexed: %s", chunk.ID))
					} else {
						r.log.Warn(fmt.Sprintf("Index add failed for %s: %v", chunk.ID, err))
					}
					continue
				}
			} else {
				if err := r.fallback.Add(ctx, chunk); err != nil {
					if errors.Is(err, index.ErrAlreadyExists) {
						r.log.Debug(fmt.Sprintf("Chunk already indexed: %s", chunk.ID))
					} else {
						r.log.Warn(fmt.Sprintf("Fallback add failed for %s: %v", chunk.ID, err))
					}
					continue
				}
			}
			created++
		}
	}

	r.recordStats(def, created)
	return created, nil
}

// finishIngestion marks the corpus loaded and rebuilds the fallback
// auxiliary indexes when the fallback backend is in use.
func (r *Retriever) finishIngestion() {
	r.loaded = true
	if r.primary == nil {
		r.fallback.BuildIndexes()
		r.log.Info(fmt.Sprintf("Fallback indexes built: %d keywords", r.fallback.KeywordCount()))
	}
}

func (r *Retriever) recordStats(def catalog.StandardDefinition, chunks int) {
	byID, ok := r.stats[def.Category]
	if !ok {
		byID = make(map[string]*standardStats)
		r.stats[def.Category] = byID
	}
	st, ok := byID[def.ID]
	if !ok {
		st = &standardStats{def: def}
		byID[def.ID] = st
	}
	st.chunks += chunks
}

// resolvePath tries the canonical standards/{category}/{file} location
// first, then two legacy flat layouts.
func (r *Retriever) resolvePath(category, filename string) (string, bool) {
	for _, candidate := range []string{
		filepath.Join(r.cfg.StandardsDir, category, filename),
		filepath.Join(r.cfg.StandardsDir, filename),
		filename,
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func weightsFromConfig(w config.WeightsConfig) scorer.Weights {
	if w == (config.WeightsConfig{}) {
		return scorer.DefaultWeights
	}
	return scorer.Weights{
		KeywordOverlap:   w.KeywordOverlap,
		MetadataMatch:    w.MetadataMatch,
		SectionBonusHigh: w.SectionBonusHigh,
		SectionBonusLow:  w.SectionBonusLow,
		TextQuality:      w.TextQuality,
		Semantic:         w.Semantic,
	}
}
