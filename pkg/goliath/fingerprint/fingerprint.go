// Package fingerprint derives canonical content hashes for published
// themes and decides whether a new theme duplicates history.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"

	"github.com/mikanntool/goliath/pkg/goliath/ingest"
)

// Record is one historical publication: the fingerprint and the theme
// text it was derived from.
type Record struct {
	Fingerprint string
	ThemeText   string
}

// New computes the canonical fingerprint of a theme: normalized text
// joined with the lexically sorted normalized tag set, hashed. The
// result is independent of tag order and of casing, punctuation and
// whitespace differences in the inputs.
func New(themeText string, tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		norm := normalize(tag)
		if norm != "" {
			parts = append(parts, norm)
		}
	}
	sort.Strings(parts)

	payload := normalize(themeText) + "|" + strings.Join(parts, ",")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Match reports why a theme duplicates history.
type Match struct {
	Duplicate  bool
	Competing  string  // fingerprint of the historical entry matched
	Similarity float64 // token Jaccard with the matched entry, 1.0 for exact
}

// Detect checks a theme against history: an exact fingerprint match, or
// token-Jaccard similarity of the theme text with any historical theme
// text at or above threshold, marks it a duplicate. The competing
// fingerprint is reported for diagnostics.
func Detect(themeText string, tags []string, history []Record, threshold float64, tok *ingest.Tokenizer) Match {
	fp := New(themeText, tags)
	for _, rec := range history {
		if rec.Fingerprint == fp {
			return Match{Duplicate: true, Competing: rec.Fingerprint, Similarity: 1.0}
		}
	}

	set := tok.Set(themeText)
	for _, rec := range history {
		sim := ingest.Jaccard(set, tok.Set(rec.ThemeText))
		if sim >= threshold {
			return Match{Duplicate: true, Competing: rec.Fingerprint, Similarity: sim}
		}
	}

	return Match{}
}

// normalize lowercases, converts non-alphanumeric runs to single
// spaces, and trims.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
