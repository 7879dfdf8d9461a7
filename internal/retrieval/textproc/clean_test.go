package textproc

import (
	"strings"
	"testing"
)

func TestClean_RemovesNoise(t *testing.T) {
	raw := "Lihat https://example.com/doc untuk detail.\n" +
		"Hubungi admin@example.com segera.\n" +
		"42\n" +
		"Page 7 of 120\n" +
		"Data pribadi harus dilindungi!!!"

	cleaned := Clean(raw)

	if strings.Contains(cleaned, "https://") {
		t.Errorf("expected URLs to be stripped, got %q", cleaned)
	}
	if strings.Contains(cleaned, "@") {
		t.Errorf("expected email tokens to be stripped, got %q", cleaned)
	}
	if strings.Contains(cleaned, "42") {
		t.Errorf("expected bare page-number line to be stripped, got %q", cleaned)
	}
	if strings.Contains(cleaned, "Page 7") {
		t.Errorf("expected page footer line to be stripped, got %q", cleaned)
	}
	if strings.Contains(cleaned, "!!!") {
		t.Errorf("expected repeated punctuation to collapse, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "dilindungi!") {
		t.Errorf("expected single terminal punctuation to survive, got %q", cleaned)
	}
}

func TestClean_NormalizesQuotes(t *testing.T) {
	cleaned := Clean("“data pribadi” dan ‘consent’")

	if strings.ContainsAny(cleaned, "“”‘’") {
		t.Errorf("expected curly quotes to be normalized, got %q", cleaned)
	}
	if !strings.Contains(cleaned, `"data pribadi"`) || !strings.Contains(cleaned, "'consent'") {
		t.Errorf("expected straight quotes, got %q", cleaned)
	}
}

func TestClean_Idempotent(t *testing.T) {
	raw := "Lihat https://example.com dan “kutipan” ini.\n\n" +
		"Pasal 26   mengatur\nkeamanan data!!!\n\n" +
		"12\n" +
		"Page 3 of 15"

	once := Clean(raw)
	if twice := Clean(once); twice != once {
		t.Errorf("Clean is not idempotent:\n once:  %q\n twice: %q", once, twice)
	}
}

func TestClean_PreservesParagraphBoundaries(t *testing.T) {
	raw := "First   paragraph\nwith a wrapped line.\n\n\nSecond paragraph here."

	cleaned := Clean(raw)

	parts := strings.Split(cleaned, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(parts), cleaned)
	}
	if parts[0] != "First paragraph with a wrapped line." {
		t.Errorf("expected whitespace runs collapsed inside paragraph, got %q", parts[0])
	}
}
