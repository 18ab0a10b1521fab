// Package goliath wires the candidate pipeline together: normalize,
// cluster, select a theme, build and validate an artifact, decorate
// it and publish exactly one micro-site per run.
package goliath

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/affiliate"
	"github.com/mikanntool/goliath/pkg/goliath/build"
	"github.com/mikanntool/goliath/pkg/goliath/candidate"
	"github.com/mikanntool/goliath/pkg/goliath/cluster"
	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/fingerprint"
	"github.com/mikanntool/goliath/pkg/goliath/ingest"
	"github.com/mikanntool/goliath/pkg/goliath/internalerr"
	"github.com/mikanntool/goliath/pkg/goliath/publish"
	"github.com/mikanntool/goliath/pkg/goliath/related"
	"github.com/mikanntool/goliath/pkg/goliath/score"
	"github.com/mikanntool/goliath/pkg/goliath/slug"
	"github.com/mikanntool/goliath/pkg/goliath/store"
	"github.com/mikanntool/goliath/pkg/goliath/theme"
)

// ClickPoster records sponsor events against the tracking worker.
// Implementations are best-effort and never return errors.
type ClickPoster interface {
	Post(ctx context.Context, event, adID, page string)
}

// Goliath is the pipeline facade.
type Goliath struct {
	cfg       config.Config
	st        store.Store
	tok       *ingest.Tokenizer
	selector  *theme.Selector
	ctrl      *build.Controller
	ranker    *related.Ranker
	publisher *publish.Publisher
	clicks    ClickPoster
	log       *slog.Logger
}

// Options configures a Goliath instance.
type Options struct {
	Config        config.Config
	Store         store.Store
	Generator     build.Generator
	CategoryTable *config.CategoryTable
	Stopwords     []string
	Clicks        ClickPoster // optional
	Logger        *slog.Logger
}

// New creates a pipeline instance with the given dependencies.
func New(opts Options) (*Goliath, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", internalerr.ErrInvalidConfig)
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("%w: generator is required", internalerr.ErrInvalidConfig)
	}
	if opts.CategoryTable == nil {
		opts.CategoryTable = &config.CategoryTable{Default: "Dev/Tools"}
	}
	if len(opts.Stopwords) == 0 {
		opts.Stopwords = ingest.DefaultStopwords()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	tok := ingest.NewTokenizer(opts.Stopwords, opts.Config.MaxTokens)
	validator := &build.Validator{MinI18nBindings: opts.Config.MinI18nBindings}

	return &Goliath{
		cfg:       opts.Config,
		st:        opts.Store,
		tok:       tok,
		selector:  theme.NewSelector(opts.Config, opts.CategoryTable, tok),
		ctrl:      build.NewController(opts.Generator, validator, opts.Config.MaxAttempts, log),
		ranker:    related.NewRanker(tok, opts.Config.RelatedLimit),
		publisher: publish.New(opts.Config.PagesDir, opts.Config.SiteDomain, opts.Store, log),
		clicks:    opts.Clicks,
		log:       log,
	}, nil
}

// Close shuts the pipeline down.
func (g *Goliath) Close() error { return g.st.Close() }

// ThemeReport is the per-theme diagnostic carried in the run summary.
type ThemeReport struct {
	Title     string          `json:"title"`
	Slug      string          `json:"slug,omitempty"`
	Category  string          `json:"category"`
	Source    string          `json:"source"`
	Score     int             `json:"score"`
	Breakdown score.Breakdown `json:"breakdown,omitempty"`
	Outcome   string          `json:"outcome"`
	Reason    string          `json:"reason,omitempty"`
	Attempts  int             `json:"attempts,omitempty"`
}

// Summary is the run record written alongside the output tree.
type Summary struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Candidates int           `json:"candidates"`
	Clusters   int           `json:"clusters"`
	Themes     []ThemeReport `json:"themes"`
	Published  string        `json:"published,omitempty"`
	URL        string        `json:"url,omitempty"`
}

// Run executes one full pipeline pass over the collected raw
// candidates and publishes at most one micro-site. When every theme
// fails or is rejected as a duplicate, ErrNothingPublished is
// returned alongside the summary.
func (g *Goliath) Run(ctx context.Context, raws []candidate.Raw) (*Summary, error) {
	sum := &Summary{StartedAt: time.Now().UTC()}
	defer func() { sum.FinishedAt = time.Now().UTC() }()

	cands := candidate.Normalize(raws, g.cfg.MaxCollect)
	sum.Candidates = len(cands)
	g.log.Info("candidates normalized", "raw", len(raws), "kept", len(cands))

	if len(cands) < g.cfg.MinCandidates {
		g.log.Warn("thin candidate batch", "count", len(cands), "min", g.cfg.MinCandidates)
	}

	clusters := cluster.Group(cands, g.tok, g.cfg.ClusterThreshold)
	sum.Clusters = len(clusters)

	themes := g.selector.Select(clusters)
	if len(themes) == 0 {
		themes = []theme.Theme{g.fallbackTheme()}
		g.log.Warn("no viable clusters, using synthetic fallback theme")
	}

	history, err := g.st.Fingerprints(ctx)
	if err != nil {
		return sum, fmt.Errorf("load fingerprint history: %w", err)
	}
	seeds, err := g.st.Seeds(ctx)
	if err != nil {
		return sum, fmt.Errorf("load seed catalog: %w", err)
	}

	alloc := slug.NewAllocator(&storeNamespace{ctx: ctx, st: g.st, pagesDir: g.cfg.PagesDir})

	for _, t := range themes {
		report := ThemeReport{
			Title:    t.Title,
			Category: t.Category,
			Source:   t.Source(),
		}

		aggText := theme.AggregateText(t.Representatives)
		match := fingerprint.Detect(aggText, t.Keywords, history, g.cfg.DuplicateThreshold, g.tok)
		t.Breakdown = score.Evaluate(aggText, totalEngagement(t.Representatives), match.Duplicate)
		report.Score = t.Breakdown.Total()
		report.Breakdown = t.Breakdown

		if match.Duplicate {
			report.Outcome = "duplicate"
			report.Reason = fmt.Sprintf("competing fingerprint %s (similarity %.2f)", match.Competing, match.Similarity)
			g.log.Warn("theme rejected as duplicate",
				"title", t.Title, "competing", match.Competing, "similarity", match.Similarity)
			sum.Themes = append(sum.Themes, report)
			continue
		}

		allocated, err := alloc.Allocate(t.Slug)
		if err != nil {
			return sum, fmt.Errorf("allocate slug: %w", err)
		}
		t.Slug = allocated
		report.Slug = allocated

		outcome, err := g.ctrl.Run(ctx, build.Request{
			Title:           t.Title,
			Category:        t.Category,
			CanonicalPath:   "/pages/" + allocated + "/",
			Keywords:        t.Keywords,
			ProblemExamples: t.ProblemExamples,
		})
		report.Attempts = outcome.Attempts
		if err != nil || !outcome.Published() {
			alloc.Release(allocated)
			report.Outcome = build.StateFailed.String()
			report.Reason = outcome.Reason
			if err != nil {
				report.Reason = err.Error()
			}
			g.log.Error("theme build failed",
				"title", t.Title, "source", t.Source(), "score", report.Score, "reason", report.Reason)
			sum.Themes = append(sum.Themes, report)
			continue
		}

		entry, err := g.decorateAndPublish(ctx, t, outcome.Artifact, seeds)
		if err != nil {
			alloc.Release(allocated)
			return sum, err
		}

		if err := g.st.AppendFingerprint(ctx, fingerprint.Record{
			Fingerprint: fingerprint.New(aggText, t.Keywords),
			ThemeText:   aggText,
		}); err != nil {
			return sum, fmt.Errorf("record fingerprint: %w", err)
		}
		if err := g.publisher.RegenerateIndexes(ctx); err != nil {
			return sum, err
		}

		report.Outcome = build.StatePublished.String()
		sum.Themes = append(sum.Themes, report)
		sum.Published = entry.Slug
		sum.URL = entry.URL
		return sum, nil
	}

	return sum, internalerr.ErrNothingPublished
}

// decorateAndPublish injects sponsor blocks and related links into a
// validated artifact, commits it, and records sponsor placements.
func (g *Goliath) decorateAndPublish(ctx context.Context, t theme.Theme, artifact string, seeds []config.SeedEntry) (store.ToolEntry, error) {
	catalog, err := g.st.Affiliates(ctx, t.Category)
	if err != nil {
		return store.ToolEntry{}, fmt.Errorf("load affiliates: %w", err)
	}
	picked := affiliate.Select(catalog, g.cfg.AffiliateLimit)
	block, err := affiliate.Render(picked, t.Slug, g.cfg.ClickEndpoint)
	if err != nil {
		return store.ToolEntry{}, fmt.Errorf("render sponsor block: %w", err)
	}
	artifact = affiliate.Inject(artifact, block, build.SponsorSlotMarker)

	inventory, err := g.st.Tools(ctx)
	if err != nil {
		return store.ToolEntry{}, fmt.Errorf("load inventory: %w", err)
	}
	links := g.ranker.Pick(t.Keywords, g.publisher.URLFor(t.Slug), inventory, seeds)
	artifact, err = related.Inject(artifact, links)
	if err != nil {
		return store.ToolEntry{}, fmt.Errorf("inject related links: %w", err)
	}

	entry, err := g.publisher.Publish(ctx, t.Slug, t.Title, t.Category, t.Keywords, artifact)
	if err != nil {
		return store.ToolEntry{}, err
	}

	if g.clicks != nil {
		for _, e := range picked {
			g.clicks.Post(ctx, "placement", e.ID, entry.Slug)
		}
	}
	return entry, nil
}

// fallbackTheme is the synthetic theme used when a run yields no
// viable cluster at all.
func (g *Goliath) fallbackTheme() theme.Theme {
	t := theme.Theme{
		Title:    "Everyday File Converter Fix Guide & Tool",
		Category: "Dev/Tools",
		Keywords: []string{"convert", "file", "format", "generator"},
	}
	t.Slug = slug.Derive(t.Title, g.cfg.SlugMaxLen)
	for i := 1; i <= g.cfg.MinProblems; i++ {
		t.ProblemExamples = append(t.ProblemExamples,
			fmt.Sprintf("Trouble related to %s: symptom #%d", t.Category, i))
	}
	return t
}

// WriteSummary writes the run record as JSON under the output
// directory.
func (g *Goliath) WriteSummary(sum *Summary) (string, error) {
	if err := os.MkdirAll(g.cfg.OutDir, 0o755); err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.cfg.OutDir, fmt.Sprintf("run-%s.json", sum.StartedAt.Format("20060102-150405")))
	if err := os.WriteFile(path, append(body, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// storeNamespace adapts the inventory plus the output tree to the
// slug allocator. A stray page directory not recorded in the
// inventory still occupies its path and must never be reallocated.
type storeNamespace struct {
	ctx      context.Context
	st       store.Store
	pagesDir string
}

func (n *storeNamespace) Exists(s string) (bool, error) {
	taken, err := n.st.SlugExists(n.ctx, s)
	if err != nil || taken {
		return taken, err
	}
	if _, err := os.Stat(filepath.Join(n.pagesDir, s)); err == nil {
		return true, nil
	}
	return false, nil
}

func totalEngagement(members []candidate.Candidate) int {
	total := 0
	for _, m := range members {
		total += m.Engagement
	}
	return total
}
