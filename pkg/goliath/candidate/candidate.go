// Package candidate defines the canonical boundary type between the
// external collectors and the pipeline. Collectors emit Raw records in
// whatever shape their platform returns; Normalize maps them into
// immutable Candidates and nothing downstream ever sees a
// source-specific shape again.
package candidate

import (
	"strings"
	"time"
)

// Raw is a collector output record before canonicalization. Optional
// fields may be zero.
type Raw struct {
	Text       string
	URL        string
	Source     string
	Author     string
	CreatedAt  time.Time
	Engagement int // platform metric (points, likes); 0 when unknown
}

// Candidate is one normalized external text record. Immutable once
// created.
type Candidate struct {
	Text       string
	URL        string
	Source     string
	Timestamp  time.Time
	Engagement int
}

// NormText returns the candidate text with whitespace runs collapsed.
func (c Candidate) NormText() string {
	return strings.Join(strings.Fields(c.Text), " ")
}

// Normalize canonicalizes raw collector records. Records lacking a
// non-empty text or url are dropped, not rejected as errors. Duplicates
// (same url plus text prefix) are removed keeping the first occurrence,
// and the result is capped at limit when limit > 0.
func Normalize(raws []Raw, limit int) []Candidate {
	seen := make(map[string]struct{}, len(raws))
	out := make([]Candidate, 0, len(raws))

	for _, r := range raws {
		text := strings.TrimSpace(r.Text)
		url := strings.TrimSpace(r.URL)
		if text == "" || url == "" {
			continue
		}

		key := url + "|" + prefix(text, 160)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		ts := r.CreatedAt
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		out = append(out, Candidate{
			Text:       text,
			URL:        url,
			Source:     r.Source,
			Timestamp:  ts,
			Engagement: r.Engagement,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
