// Package ingest provides text tokenization for clustering and
// duplicate detection.
package ingest

import (
	"strings"
	"unicode"
)

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
	maxTokens int
}

// NewTokenizer creates a tokenizer with the given stopword list. A
// maxTokens of 0 means unbounded.
func NewTokenizer(stopwords []string, maxTokens int) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops, maxTokens: maxTokens}
}

// Tokenize splits text into normalized tokens: lowercase, URLs
// stripped, alphanumeric-plus-hyphen runs only, tokens of length <= 1
// and stopwords removed, capped at maxTokens.
func (t *Tokenizer) Tokenize(text string) []string {
	text = stripURLs(strings.ToLower(text))

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := cleanToken(current.String())
		current.Reset()
		if len(word) <= 1 {
			return
		}
		if _, stop := t.stopwords[word]; stop {
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(r)
		} else {
			flush()
		}
		if t.maxTokens > 0 && len(tokens) >= t.maxTokens {
			return tokens
		}
	}
	flush()

	if t.maxTokens > 0 && len(tokens) > t.maxTokens {
		tokens = tokens[:t.maxTokens]
	}
	return tokens
}

// Set returns the token set of text.
func (t *Tokenizer) Set(text string) map[string]struct{} {
	tokens := t.Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// cleanToken strips leading/trailing hyphens and collapses hyphen runs.
func cleanToken(token string) string {
	token = strings.Trim(token, "-")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	return token
}

// stripURLs removes http(s) URLs before tokenization so link noise does
// not leak into token sets.
func stripURLs(text string) string {
	for {
		idx := strings.Index(text, "http://")
		if idx < 0 {
			idx = strings.Index(text, "https://")
		}
		if idx < 0 {
			return text
		}
		end := idx
		for end < len(text) && !unicode.IsSpace(rune(text[end])) {
			end++
		}
		text = text[:idx] + " " + text[end:]
	}
}

// Jaccard computes intersection-over-union of two token sets. Two empty
// sets are treated as dissimilar.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// DefaultStopwords is the seed stopword list; deployments extend it via
// the stoplist catalog file.
func DefaultStopwords() []string {
	return strings.Fields(`
a an the and or but if then else when while of for to in on at from by
with without into onto over under is are was were be been being do does
did done have has had will would can could should may might this that
these those it its im youre we they them our your my mine me you he she
his her
`)
}
