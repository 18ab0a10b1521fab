// Package theme turns top clusters into scored Theme records that
// drive generation.
package theme

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
	"github.com/mikanntool/goliath/pkg/goliath/cluster"
	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/ingest"
	"github.com/mikanntool/goliath/pkg/goliath/score"
	"github.com/mikanntool/goliath/pkg/goliath/slug"
)

// Theme is the selected representation of a cluster. After creation the
// only field a later stage may rewrite is Slug, once, by the allocator.
type Theme struct {
	Title           string
	Slug            string
	Category        string
	Keywords        []string
	ProblemExamples []string
	Score           float64
	Breakdown       score.Breakdown
	Representatives []candidate.Candidate
}

// Source returns the source of the seed candidate, for diagnostics.
func (t Theme) Source() string {
	if len(t.Representatives) == 0 {
		return "synthetic"
	}
	return t.Representatives[0].Source
}

// AggregateText joins the normalized member texts; category inference
// and duplicate detection run over this.
func AggregateText(members []candidate.Candidate) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, m.NormText())
	}
	return strings.Join(parts, " ")
}

// Selector builds themes from clusters under a fixed configuration.
type Selector struct {
	cfg   config.Config
	table *config.CategoryTable
	tok   *ingest.Tokenizer
}

// NewSelector constructs a theme selector.
func NewSelector(cfg config.Config, table *config.CategoryTable, tok *ingest.Tokenizer) *Selector {
	return &Selector{cfg: cfg, table: table, tok: tok}
}

// solvable and tool signal phrase lists; counted, not weighted
// individually.
var (
	solvableSignals = []string{"how", "fix", "error", "failed", "can't", "cannot", "help"}
	toolSignals     = []string{"convert", "compress", "calculator", "generator", "template", "checklist"}
)

// Select builds up to MaxThemes themes from the given clusters. Only
// clusters of size >= 2 qualify; when none do, the top-scoring single
// candidate (by rule-table total, ties broken by input order) seeds one
// theme instead.
func (s *Selector) Select(clusters []cluster.Cluster) []Theme {
	var themes []Theme
	for _, c := range clusters {
		if c.Size() < 2 {
			continue
		}
		themes = append(themes, s.Build(c.Candidates))
		if len(themes) >= s.cfg.MaxThemes {
			break
		}
	}

	if len(themes) == 0 {
		if single := s.bestSingle(clusters); single != nil {
			themes = append(themes, s.Build([]candidate.Candidate{*single}))
		}
	}

	sort.SliceStable(themes, func(i, j int) bool {
		return themes[i].Score > themes[j].Score
	})
	if len(themes) > s.cfg.MaxThemes {
		themes = themes[:s.cfg.MaxThemes]
	}
	return themes
}

func (s *Selector) bestSingle(clusters []cluster.Cluster) *candidate.Candidate {
	var best *candidate.Candidate
	bestTotal := 0
	for _, c := range clusters {
		for i := range c.Candidates {
			cand := c.Candidates[i]
			total := score.Evaluate(cand.NormText(), cand.Engagement, false).Total()
			if best == nil || total > bestTotal {
				best = &c.Candidates[i]
				bestTotal = total
			}
		}
	}
	return best
}

// Build derives a Theme from cluster members.
func (s *Selector) Build(members []candidate.Candidate) Theme {
	keywords := s.Keywords(members)
	text := strings.ToLower(AggregateText(members))
	category, boost := s.InferCategory(text, keywords)

	title := s.title(keywords, category)

	t := Theme{
		Title:           title,
		Slug:            baseSlug(title, s.cfg.SlugMaxLen),
		Category:        category,
		Keywords:        keywords,
		ProblemExamples: s.problems(members, category),
		Representatives: representatives(members, 8),
	}
	t.Score = s.heuristicScore(len(members), text) * boost
	return t
}

// Keywords extracts the top-K tokens by frequency, ties broken
// lexically.
func (s *Selector) Keywords(members []candidate.Candidate) []string {
	freq := map[string]int{}
	for _, m := range members {
		for _, tok := range s.tok.Tokenize(m.NormText()) {
			freq[tok]++
		}
	}

	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if len(keys) > s.cfg.TopKeywords {
		keys = keys[:s.cfg.TopKeywords]
	}
	return keys
}

// InferCategory walks the ordered priority table; the first rule whose
// trigger keywords appear in the aggregated text or keyword list wins.
func (s *Selector) InferCategory(lowerText string, keywords []string) (string, float64) {
	kwSet := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kwSet[strings.ToLower(k)] = struct{}{}
	}

	for _, rule := range s.table.Rules {
		for _, trigger := range rule.Keywords {
			trigger = strings.ToLower(trigger)
			if _, ok := kwSet[trigger]; ok || strings.Contains(lowerText, trigger) {
				boost := rule.Boost
				if boost == 0 {
					boost = 1.0
				}
				return rule.Name, boost
			}
		}
	}
	return s.table.Default, 1.0
}

// heuristicScore implements size*w + solvable*w1 + tool*w2.
func (s *Selector) heuristicScore(size int, lowerText string) float64 {
	solvable := 0
	for _, w := range solvableSignals {
		if strings.Contains(lowerText, w) {
			solvable++
		}
	}
	tool := 0
	for _, w := range toolSignals {
		if strings.Contains(lowerText, w) {
			tool++
		}
	}
	return float64(size)*s.cfg.SizeWeight +
		float64(solvable)*s.cfg.SolvableWeight +
		float64(tool)*s.cfg.ToolWeight
}

// problems builds the deduplicated problem-example list, padded with
// synthetic placeholders up to the minimum and capped at the maximum.
func (s *Selector) problems(members []candidate.Candidate, category string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range members {
		if len(out) >= s.cfg.MaxProblems {
			break
		}
		line := m.NormText()
		if len(line) > 120 {
			line = strings.TrimSpace(line[:120])
		}
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}

	for len(out) < s.cfg.MinProblems {
		out = append(out, fmt.Sprintf("Trouble related to %s: symptom #%d", category, len(out)+1))
	}
	if len(out) > s.cfg.MaxProblems {
		out = out[:s.cfg.MaxProblems]
	}
	return out
}

func (s *Selector) title(keywords []string, category string) string {
	var parts []string
	for _, k := range keywords {
		if len(parts) >= 5 {
			break
		}
		if len(k) <= 18 {
			parts = append(parts, k)
		}
	}
	base := strings.Join(parts, " / ")
	if len(base) > 60 {
		base = strings.TrimRight(strings.TrimSpace(base[:60]), "/ ")
	}
	if base == "" {
		base = strings.ReplaceAll(category, "/", " ")
	}
	return base + " Fix Guide & Tool"
}

func representatives(members []candidate.Candidate, max int) []candidate.Candidate {
	if len(members) > max {
		members = members[:max]
	}
	out := make([]candidate.Candidate, len(members))
	copy(out, members)
	return out
}

// baseSlug derives the pre-allocation slug from the title plus a short
// stable hash so distinct themes with similar keyword heads rarely
// collide before allocation.
func baseSlug(title string, maxLen int) string {
	sum := sha256.Sum256([]byte(title))
	return slug.Derive(title, maxLen) + "-" + hex.EncodeToString(sum[:])[:6]
}
