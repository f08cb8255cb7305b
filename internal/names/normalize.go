package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes diacritics via NFD decomposition followed by
// combining-mark removal ("Jokić" -> "jokic", "Dončić" -> "doncic").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a team or player name for comparison:
// lower-case, diacritics stripped, every non-alphanumeric run replaced by a
// single space, trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return normalizeWith(s, ' ')
}

// NormalizeCompact is Normalize with the delimiter dropped entirely,
// used for cache keys and exact-equality checks ("T.J. McConnell" -> "tjmcconnell").
func NormalizeCompact(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "")
}

func normalizeWith(s string, delim rune) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingDelim := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if pendingDelim && b.Len() > 0 {
				b.WriteRune(delim)
			}
			pendingDelim = false
			b.WriteRune(r)
			continue
		}
		pendingDelim = true
	}
	return b.String()
}

// nameSuffixes are generational suffixes ignored when comparing player names
// ("Gary Payton II" vs "Gary Payton").
var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
}

// nameParts returns the normalized name split into words with generational
// suffixes removed.
func nameParts(s string) []string {
	fields := strings.Fields(Normalize(s))
	parts := fields[:0]
	for _, f := range fields {
		if nameSuffixes[f] {
			continue
		}
		parts = append(parts, f)
	}
	return parts
}
