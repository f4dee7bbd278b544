package templates

import "strings"

// Slang maps a keyword to the colloquial spellings chat uses for it.
type Slang map[string][]string

// DefaultSlang covers the Indonesian and English chat shorthand seen most in gaming streams.
func DefaultSlang() Slang {
	return Slang{
		"build":     {"bild", "bulid", "racikan", "set item"},
		"item":      {"itm", "items"},
		"emblem":    {"emblm", "embel"},
		"counter":   {"kounter", "cntr", "ngecounter"},
		"rank":      {"ranked", "rangked", "push rank"},
		"skin":      {"skn", "kostum"},
		"spec":      {"spek", "speck", "specs"},
		"jadwal":    {"jdwl", "schedule", "skedul"},
		"discord":   {"dc server", "diskord"},
		"mabar":     {"main bareng", "play together", "join party"},
		"sensi":     {"sensitivity", "sensitivitas"},
		"loadout":   {"lodout", "loadot"},
		"crosshair": {"xhair", "crosair", "krosher"},
		"artifact":  {"artefak", "artifak"},
		"tips":      {"trik", "tricks", "cara jago"},
	}
}

// variants returns the slang spellings for keyword. Lookup is case-insensitive.
func (s Slang) variants(keyword string) []string {
	if s == nil {
		return nil
	}
	if v, ok := s[keyword]; ok {
		return v
	}
	return s[strings.ToLower(keyword)]
}
