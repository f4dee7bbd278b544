package mention

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, decomposes it (NFD), strips combining marks and
// collapses runs of whitespace into single spaces. It is idempotent.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		// transform only fails on invalid input chains; keep the lowercased text
		decomposed = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(decomposed), " ")
}
