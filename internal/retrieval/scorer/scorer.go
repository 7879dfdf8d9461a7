package scorer

import (
	"strings"

	"ComplyCheck/internal/retrieval/schema"
)

const (
	// FallbackBaseScore is the base semantic score used on the fallback
	// path, where no embedding comparison is performed.
	FallbackBaseScore = 0.5
	// RelevanceThreshold is the minimum composite score for a fallback
	// candidate to be considered at all.
	RelevanceThreshold = 0.1

	// qualityNormChars is the text length at which the quality component
	// saturates. Pure vector similarity under-weights exact regulatory
	// term matches ("Pasal 26") in a legal context; the composite score
	// corrects for that without a learned reranker.
	qualityNormChars = 500
)

// bonusSections are the section types that receive the higher bonus.
var bonusSections = map[string]bool{
	"obligation": true,
	"procedure":  true,
	"right":      true,
}

// Weights holds the relevance blend. The defaults are empirically chosen;
// treat them as tunables, not invariants.
type Weights struct {
	KeywordOverlap   float64 // direct query-word overlap with the chunk text
	MetadataMatch    float64 // query words appearing inside keyword tags
	SectionBonusHigh float64 // bonus for obligation/procedure/right sections
	SectionBonusLow  float64 // bonus for every other section type
	TextQuality      float64 // length-based quality, saturating at qualityNormChars
	Semantic         float64 // caller-supplied base semantic score
}

// DefaultWeights is the production blend.
var DefaultWeights = Weights{
	KeywordOverlap:   0.40,
	MetadataMatch:    0.20,
	SectionBonusHigh: 0.15,
	SectionBonusLow:  0.05,
	TextQuality:      0.10,
	Semantic:         0.15,
}

// Score computes the composite relevance of a chunk for a query. It is a
// pure function of its arguments and always returns a value in [0, 1].
// base is the semantic similarity from the vector index, or
// FallbackBaseScore on the lexical path.
func (w Weights) Score(query, text string, md schema.Metadata, base float64) float64 {
	queryWords := wordSet(query)

	var keywordScore float64
	var metadataScore float64
	if len(queryWords) > 0 {
		docWords := wordSet(text)
		overlap := 0
		for qw := range queryWords {
			if docWords[qw] {
				overlap++
			}
		}
		keywordScore = float64(overlap) / float64(len(queryWords)) * w.KeywordOverlap

		tags := strings.Split(strings.ToLower(md.Keywords), ",")
		matched := 0
		for qw := range queryWords {
			for _, tag := range tags {
				if tag != "" && strings.Contains(tag, qw) {
					matched++
					break
				}
			}
		}
		metadataScore = float64(matched) / float64(len(queryWords)) * w.MetadataMatch
	}

	sectionBonus := w.SectionBonusLow
	if bonusSections[md.SectionType] {
		sectionBonus = w.SectionBonusHigh
	}

	lengthRatio := float64(md.TextLength) / qualityNormChars
	if lengthRatio > 1.0 {
		lengthRatio = 1.0
	}
	lengthScore := lengthRatio * w.TextQuality

	semanticScore := base * w.Semantic

	total := keywordScore + metadataScore + sectionBonus + lengthScore + semanticScore
	if total > 1.0 {
		return 1.0
	}
	if total < 0 {
		return 0
	}
	return total
}

// CountKeywordMatches reports how many query words appear inside the
// chunk's keyword tags.
func CountKeywordMatches(query, keywords string) int {
	if keywords == "" {
		return 0
	}

	tags := strings.Split(strings.ToLower(keywords), ",")
	matches := 0
	for qw := range wordSet(query) {
		for _, tag := range tags {
			if strings.Contains(tag, qw) {
				matches++
				break
			}
		}
	}
	return matches
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}
