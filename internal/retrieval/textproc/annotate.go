package textproc

import (
	"fmt"
	"regexp"
	"strings"

	"ComplyCheck/internal/retrieval/catalog"
	"ComplyCheck/internal/retrieval/schema"
)

// SectionGeneral is the section type assigned when no pattern group matches.
const SectionGeneral = "general"

// maxKeywordTags caps the keyword tag list per chunk.
const maxKeywordTags = 10

// Section reference patterns, evaluated in order; the first match wins.
var articlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Article|Section)\s*(\d+[A-Za-z]*)`),
	regexp.MustCompile(`(?i)(Pasal)\s*(\d+[A-Za-z]*)`),
}

// keywordVocabulary is the fixed bilingual (EN/ID) compliance vocabulary
// used for keyword tagging. Tag order follows this list.
var keywordVocabulary = []string{
	"data", "pribadi", "personal", "consent", "persetujuan", "processing", "pengolahan",
	"security", "keamanan", "privacy", "privasi", "rights", "hak", "protection", "perlindungan",
	"breach", "pelanggaran", "controller", "pengendali", "processor", "pemroses",
	"transfer", "storage", "penyimpanan", "retention", "retensi", "deletion", "penghapusan",
	"audit", "compliance", "kepatuhan", "regulation", "regulasi", "law", "hukum",
}

// sectionPatterns classifies chunks by content. Order is significant: the
// first group with any phrase present in the chunk wins, so a chunk
// containing both "shall" and "shall not" classifies as obligation.
var sectionPatterns = []struct {
	label   string
	phrases []string
}{
	{"definition", []string{"definition", "definisi", "means", "berarti", "refers to", "mengacu"}},
	{"obligation", []string{"shall", "must", "wajib", "harus", "required", "diwajibkan"}},
	{"prohibition", []string{"shall not", "must not", "tidak boleh", "dilarang", "prohibited"}},
	{"procedure", []string{"procedure", "prosedur", "process", "proses", "steps", "langkah"}},
	{"penalty", []string{"penalty", "sanksi", "fine", "denda", "punishment", "hukuman"}},
	{"right", []string{"right", "hak", "entitle", "berhak", "may request", "dapat meminta"}},
}

// ExtractArticle returns the section reference cited in the chunk, or
// "Page N" when no Article/Section/Pasal pattern matches.
func ExtractArticle(text string, page int) string {
	for _, re := range articlePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return capitalize(m[1]) + " " + m[2]
		}
	}
	return fmt.Sprintf("Page %d", page)
}

// ExtractKeywords returns the comma-joined vocabulary terms present in
// the chunk, capped at maxKeywordTags, in vocabulary order.
func ExtractKeywords(text string) string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range keywordVocabulary {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
			if len(found) == maxKeywordTags {
				break
			}
		}
	}
	return strings.Join(found, ",")
}

// SectionType classifies the chunk by its first matching pattern group.
func SectionType(text string) string {
	lower := strings.ToLower(text)
	for _, group := range sectionPatterns {
		for _, phrase := range group.phrases {
			if strings.Contains(lower, phrase) {
				return group.label
			}
		}
	}
	return SectionGeneral
}

// Annotate derives the full metadata record for one chunk.
func Annotate(text string, page, ordinal int, def catalog.StandardDefinition, filename string) schema.Metadata {
	standardType := def.ID
	if resolved, ok := catalog.FromFilename(filename); ok {
		standardType = resolved.ID
	}

	return schema.Metadata{
		Source:       filename,
		Category:     def.Category,
		Page:         page,
		Ordinal:      ordinal,
		StandardID:   def.ID,
		StandardType: standardType,
		FullName:     def.FullName,
		Jurisdiction: def.Jurisdiction,
		FocusAreas:   strings.Join(def.FocusAreas, ","),
		TextLength:   len(text),
		Keywords:     ExtractKeywords(text),
		SectionType:  SectionType(text),
		Article:      ExtractArticle(text, page),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
