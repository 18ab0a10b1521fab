// Package related ranks previously published tools and curated seed
// sites against a theme to produce the page's related-links block.
package related

import (
	"sort"
	"strings"

	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/ingest"
	"github.com/mikanntool/goliath/pkg/goliath/store"
)

// Link is one entry of the related-links block.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Ranker scores inventory and seed entries by tag overlap with a
// theme's keywords.
type Ranker struct {
	tok   *ingest.Tokenizer
	limit int
}

// NewRanker constructs a ranker returning at most limit links.
func NewRanker(tok *ingest.Tokenizer, limit int) *Ranker {
	if limit <= 0 {
		limit = 8
	}
	return &Ranker{tok: tok, limit: limit}
}

type scored struct {
	link  Link
	score float64
	order int
}

// Pick selects the best related links for a theme. Inventory entries
// and seed sites compete on keyword overlap; when too few overlap,
// the list is backfilled with the newest inventory entries first and
// seed sites after. ownURL and duplicate URLs are always excluded.
func (r *Ranker) Pick(keywords []string, ownURL string, inventory []store.ToolEntry, seeds []config.SeedEntry) []Link {
	themeSet := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		themeSet[strings.ToLower(k)] = struct{}{}
	}

	var pool []scored
	for i, e := range inventory {
		pool = append(pool, scored{
			link:  Link{Title: e.Title, URL: e.URL},
			score: r.overlap(themeSet, e.Tags, e.Title),
			order: i,
		})
	}
	base := len(pool)
	for i, s := range seeds {
		pool = append(pool, scored{
			link:  Link{Title: s.Title, URL: s.URL},
			score: r.overlap(themeSet, s.Tags, s.Title),
			order: base + i,
		})
	}

	// Overlap decides rank; the original pool order (inventory newest
	// first, then seeds) breaks ties and drives backfill.
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return pool[i].order < pool[j].order
	})

	seen := map[string]struct{}{}
	if ownURL != "" {
		seen[ownURL] = struct{}{}
	}

	var out []Link
	for _, s := range pool {
		if len(out) >= r.limit {
			break
		}
		if s.link.URL == "" {
			continue
		}
		if _, dup := seen[s.link.URL]; dup {
			continue
		}
		seen[s.link.URL] = struct{}{}
		out = append(out, s.link)
	}
	return out
}

// overlap is the Jaccard similarity between the theme keyword set and
// an entry's tags plus title tokens.
func (r *Ranker) overlap(themeSet map[string]struct{}, tags []string, title string) float64 {
	entrySet := r.tok.Set(title)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			entrySet[t] = struct{}{}
		}
	}
	return ingest.Jaccard(themeSet, entrySet)
}
