package cache

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so accented
// and unaccented spellings normalize to the same text.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes source text for cache keying: lowercase, strip
// diacritics, drop punctuation and symbols, collapse whitespace. Superficial
// differences ("Hello!!" vs "héllo") land in the same cache slot.
func Normalize(text string) string {
	text = strings.ToLower(text)
	if stripped, _, err := transform.String(stripMarks, text); err == nil {
		text = stripped
	}

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenSet splits normalized text into its unique tokens.
func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		set[tok] = struct{}{}
	}
	return set
}

// jaccard computes token-set similarity between two normalized texts.
// Two empty texts are considered identical.
func jaccard(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	inter := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
