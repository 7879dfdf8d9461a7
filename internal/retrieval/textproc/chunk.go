package textproc

import "strings"

const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 600
	// MinChunkChars is the minimum length of an emitted chunk. Shorter
	// fragments carry too little context to cite.
	MinChunkChars = 50

	// Paragraphs shorter than this are treated as layout noise.
	minParagraphChars = 20
)

// Split breaks cleaned page text into chunks of roughly targetSize
// characters. Paragraph boundaries are the primary split points:
// paragraphs are accumulated greedily and a chunk is emitted when the
// next paragraph would push it past targetSize. Pages without usable
// paragraph structure (OCR output, single run-on blocks) fall back to
// fixed windows of targetSize/8 words. Chunks shorter than MinChunkChars
// are discarded.
func Split(text string, targetSize int) []string {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if len(p) > minParagraphChars {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	var current string
	for _, paragraph := range paragraphs {
		if current != "" && len(current)+len(paragraph) > targetSize {
			chunks = append(chunks, current)
			current = paragraph
			continue
		}
		if current == "" {
			current = paragraph
		} else {
			current = current + "\n\n" + paragraph
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	// No paragraph structure, or one oversized block: re-chunk by word
	// windows instead.
	if len(chunks) == 0 || (len(chunks) == 1 && len(chunks[0]) > targetSize*2) {
		chunks = splitByWords(text, targetSize/8)
	}

	filtered := chunks[:0]
	for _, c := range chunks {
		if len(strings.TrimSpace(c)) >= MinChunkChars {
			filtered = append(filtered, strings.TrimSpace(c))
		}
	}
	return filtered
}

// splitByWords emits consecutive windows of wordsPerChunk words.
func splitByWords(text string, wordsPerChunk int) []string {
	if wordsPerChunk <= 0 {
		wordsPerChunk = DefaultChunkSize / 8
	}

	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
