package textproc

import (
	"strings"
	"testing"

	"ComplyCheck/internal/retrieval/catalog"
)

func TestExtractArticle(t *testing.T) {
	tests := []struct {
		name string
		text string
		page int
		want string
	}{
		{"english article", "As stated in ARTICLE 6 of this regulation", 1, "Article 6"},
		{"english section", "see section 12a for details", 1, "Section 12a"},
		{"indonesian pasal", "Sebagaimana diatur dalam pasal 26 ayat 1", 3, "Pasal 26"},
		{"english wins over indonesian", "Article 5 implements Pasal 26", 2, "Article 5"},
		{"no match falls back to page", "general provisions apply here", 9, "Page 9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractArticle(tt.text, tt.page); got != tt.want {
				t.Errorf("ExtractArticle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Pengendali data wajib menjaga keamanan data pribadi")

	tags := strings.Split(got, ",")
	if len(tags) == 0 || got == "" {
		t.Fatal("expected keyword tags, got none")
	}

	// Tags keep vocabulary order: "data" precedes "pribadi" precedes
	// "keamanan".
	want := []string{"data", "pribadi", "keamanan", "pengendali"}
	for i, w := range want {
		if tags[i] != w {
			t.Errorf("tag[%d] = %q, want %q (tags: %v)", i, tags[i], w, tags)
		}
	}
}

func TestExtractKeywords_CapsAtTen(t *testing.T) {
	text := "data pribadi personal consent persetujuan processing pengolahan " +
		"security keamanan privacy privasi rights hak protection perlindungan breach"

	got := ExtractKeywords(text)
	if n := len(strings.Split(got, ",")); n != 10 {
		t.Errorf("expected 10 tags, got %d: %q", n, got)
	}
}

func TestSectionType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"definition", "data pribadi berarti setiap data tentang seseorang", "definition"},
		{"obligation", "pengendali data wajib melindungi data", "obligation"},
		{"prohibition", "transfer data dilarang tanpa persetujuan", "prohibition"},
		{"procedure", "langkah berikut menjelaskan prosedur pengaduan", "procedure"},
		{"penalty", "sanksi administratif berupa denda", "penalty"},
		{"right", "subjek data berhak mengakses datanya", "right"},
		{"general", "ketentuan umum tentang peraturan ini", "general"},
		// Order is significant: obligation is tested before prohibition,
		// so "shall not" classifies as obligation via "shall".
		{"earlier group wins", "the controller shall not disclose the data", "obligation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SectionType(tt.text); got != tt.want {
				t.Errorf("SectionType(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	def, ok := catalog.Lookup("UU_PDP")
	if !ok {
		t.Fatal("UU_PDP missing from catalog")
	}

	text := "Pasal 26: Data pribadi harus dilindungi oleh pengendali data sesuai ketentuan keamanan."
	md := Annotate(text, 3, 1, def, "UU_PDP.pdf")

	if md.Article != "Pasal 26" {
		t.Errorf("Article = %q, want %q", md.Article, "Pasal 26")
	}
	if md.SectionType != "obligation" {
		t.Errorf("SectionType = %q, want %q (harus)", md.SectionType, "obligation")
	}
	if md.StandardID != "UU_PDP" {
		t.Errorf("StandardID = %q, want UU_PDP", md.StandardID)
	}
	if md.StandardType != "UU_PDP" {
		t.Errorf("StandardType = %q, want UU_PDP", md.StandardType)
	}
	if md.Category != "Nasional" {
		t.Errorf("Category = %q, want Nasional", md.Category)
	}
	if md.TextLength != len(text) {
		t.Errorf("TextLength = %d, want %d", md.TextLength, len(text))
	}
	if md.Page != 3 || md.Ordinal != 1 {
		t.Errorf("Page/Ordinal = %d/%d, want 3/1", md.Page, md.Ordinal)
	}
	if !strings.Contains(md.Keywords, "pribadi") {
		t.Errorf("Keywords = %q, want to contain %q", md.Keywords, "pribadi")
	}
}
