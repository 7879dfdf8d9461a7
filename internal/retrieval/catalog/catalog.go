package catalog

import (
	"strings"

	"ComplyCheck/internal/retrieval/schema"
)

// StandardDefinition is a static catalog entry for one regulatory
// framework. Entries are immutable and loaded once at startup.
type StandardDefinition struct {
	ID           string
	Files        []string
	Category     string
	FullName     string
	Jurisdiction string
	FocusAreas   []string
}

var definitions = []StandardDefinition{
	{
		ID:           "GDPR",
		Files:        []string{"GDPR.pdf"},
		Category:     schema.CategoryGlobal,
		FullName:     "General Data Protection Regulation",
		Jurisdiction: "European Union",
		FocusAreas:   []string{"data protection", "privacy rights", "consent", "data processing"},
	},
	{
		ID:           "NIST",
		Files:        []string{"NIST.pdf"},
		Category:     schema.CategoryGlobal,
		FullName:     "NIST Cybersecurity Framework",
		Jurisdiction: "United States",
		FocusAreas:   []string{"cybersecurity", "risk management", "security controls", "incident response"},
	},
	{
		ID:           "UU_PDP",
		Files:        []string{"UU_PDP.pdf"},
		Category:     schema.CategoryNasional,
		FullName:     "Undang-Undang Perlindungan Data Pribadi",
		Jurisdiction: "Indonesia",
		FocusAreas:   []string{"data pribadi", "perlindungan data", "hak subjek data", "pengolahan data"},
	},
	{
		ID:           "POJK",
		Files:        []string{"POJK.pdf"},
		Category:     schema.CategoryNasional,
		FullName:     "Peraturan OJK Perlindungan Konsumen",
		Jurisdiction: "Indonesia",
		FocusAreas:   []string{"perlindungan konsumen", "layanan keuangan", "transparansi", "keluhan konsumen"},
	},
	{
		ID:           "BSSN",
		Files:        []string{"BSSN_A.pdf", "BSSN_B.pdf", "BSSN_C.pdf"},
		Category:     schema.CategoryNasional,
		FullName:     "Peraturan BSSN Keamanan Siber",
		Jurisdiction: "Indonesia",
		FocusAreas:   []string{"keamanan siber", "sistem elektronik", "insiden siber", "audit keamanan"},
	},
}

// All returns the full catalog in declaration order.
func All() []StandardDefinition {
	out := make([]StandardDefinition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for a standard id.
func Lookup(id string) (StandardDefinition, bool) {
	for _, def := range definitions {
		if def.ID == id {
			return def, true
		}
	}
	return StandardDefinition{}, false
}

// FromFilename resolves a source PDF file name to its standard.
// Exact file matches are tried first, then common name variations.
func FromFilename(filename string) (StandardDefinition, bool) {
	lower := strings.ToLower(filename)

	for _, def := range definitions {
		for _, f := range def.Files {
			if strings.ToLower(f) == lower {
				return def, true
			}
		}
	}

	switch {
	case strings.Contains(lower, "gdpr"):
		return Lookup("GDPR")
	case strings.Contains(lower, "nist"):
		return Lookup("NIST")
	case strings.Contains(lower, "pdp"), strings.Contains(lower, "perlindungan_data"):
		return Lookup("UU_PDP")
	case strings.Contains(lower, "pojk"), strings.Contains(lower, "ojk"):
		return Lookup("POJK")
	case strings.Contains(lower, "bssn"):
		return Lookup("BSSN")
	}

	return StandardDefinition{}, false
}
