package catalog

import (
	"testing"

	"ComplyCheck/internal/retrieval/schema"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id       string
		ok       bool
		category string
	}{
		{"GDPR", true, schema.CategoryGlobal},
		{"NIST", true, schema.CategoryGlobal},
		{"UU_PDP", true, schema.CategoryNasional},
		{"POJK", true, schema.CategoryNasional},
		{"BSSN", true, schema.CategoryNasional},
		{"ISO27001", false, ""},
		{"gdpr", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			def, ok := Lookup(tt.id)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.id, ok, tt.ok)
			}
			if ok && def.Category != tt.category {
				t.Errorf("Category = %q, want %q", def.Category, tt.category)
			}
		})
	}
}

func TestAll(t *testing.T) {
	defs := All()
	if len(defs) != 5 {
		t.Fatalf("All() returned %d definitions, want 5", len(defs))
	}
	if defs[0].ID != "GDPR" {
		t.Errorf("first definition = %q, want GDPR", defs[0].ID)
	}

	// Mutating the returned slice must not touch the catalog.
	defs[0].ID = "mutated"
	if fresh := All(); fresh[0].ID != "GDPR" {
		t.Error("All() exposes internal catalog storage")
	}
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		wantID   string
		ok       bool
	}{
		{"GDPR.pdf", "GDPR", true},
		{"gdpr.pdf", "GDPR", true},
		{"BSSN_B.pdf", "BSSN", true},
		{"gdpr_regulation_2016.pdf", "GDPR", true},
		{"nist_csf_v2.pdf", "NIST", true},
		{"uu_pdp_2022.pdf", "UU_PDP", true},
		{"perlindungan_data_pribadi.pdf", "UU_PDP", true},
		{"pojk_6_2022.pdf", "POJK", true},
		{"peraturan_ojk.pdf", "POJK", true},
		{"bssn_keamanan.pdf", "BSSN", true},
		{"random_document.pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			def, ok := FromFilename(tt.filename)
			if ok != tt.ok {
				t.Fatalf("FromFilename(%q) ok = %v, want %v", tt.filename, ok, tt.ok)
			}
			if ok && def.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", def.ID, tt.wantID)
			}
		})
	}
}
