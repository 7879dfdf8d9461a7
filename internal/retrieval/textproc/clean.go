package textproc

import (
	"regexp"
	"strings"
)

var (
	urlRe        = regexp.MustCompile(`http[s]?://\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)
	pageNumRe    = regexp.MustCompile(`^\s*\d+\s*$`)
	pageFooterRe = regexp.MustCompile(`(?i)^\s*Page\s+\d+`)
	punctRe      = regexp.MustCompile(`([.!?])[.!?]+`)
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe   = regexp.MustCompile(`\s+`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
)

// Clean normalizes raw extracted page text before chunking: straight
// quotes, no URLs or email tokens, no bare page-number or "Page N" footer
// lines, collapsed punctuation runs and whitespace. Blank-line paragraph
// boundaries are preserved so the chunker can split on them.
func Clean(text string) string {
	text = quoteReplacer.Replace(text)
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if pageNumRe.MatchString(line) || pageFooterRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = punctRe.ReplaceAllString(text, "$1")

	// Collapse whitespace runs inside each paragraph while keeping the
	// paragraph boundaries themselves.
	paragraphs := blankLineRe.Split(text, -1)
	cleaned := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(spaceRunRe.ReplaceAllString(p, " "))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}

	return strings.Join(cleaned, "\n\n")
}
