package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/mikanntool/goliath/internal/clicklog"
	"github.com/mikanntool/goliath/internal/collect"
	"github.com/mikanntool/goliath/internal/llm"
	"github.com/mikanntool/goliath/pkg/goliath"
	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/internalerr"
	"github.com/mikanntool/goliath/pkg/goliath/store"
	"github.com/mikanntool/goliath/pkg/goliath/store/sqlite"
)

type options struct {
	DBPath   string `long:"db" env:"GOLIATH_DB" default:"goliath.db" description:"SQLite database path"`
	PagesDir string `long:"pages-dir" env:"PAGES_DIR" default:"pages" description:"Output directory for published pages"`
	OutDir   string `long:"out-dir" env:"OUT_DIR" default:"_out" description:"Directory for run summaries"`

	SiteBrand  string `long:"site-brand" env:"SITE_BRAND" default:"Mikanntool" description:"Site brand name"`
	SiteDomain string `long:"site-domain" env:"SITE_DOMAIN" default:"mikanntool.com" description:"Canonical site domain"`

	LLMBaseURL string `long:"llm-base-url" env:"LLM_BASE_URL" description:"OpenAI-compatible chat completions endpoint (required)" required:"true"`
	LLMAPIKey  string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the generation endpoint"`
	LLMModel   string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Model used for generation and repair"`

	Sources  string `long:"sources" env:"COLLECT_SOURCES" default:"hn,bluesky,mastodon,reddit,x" description:"Comma-separated collector sources"`
	Queries  string `long:"queries" env:"COLLECT_QUERIES" description:"Comma-separated search phrases (defaults to the built-in list)"`
	DaysBack int    `long:"days-back" env:"COLLECT_DAYS_BACK" default:"365" description:"Collection window in days"`
	PerQuery int    `long:"per-query" env:"COLLECT_PER_QUERY" default:"15" description:"Results per query per source"`

	MastodonAPIBase string `long:"mastodon-api-base" env:"MASTODON_API_BASE" description:"Mastodon instance API base URL"`
	MastodonToken   string `long:"mastodon-token" env:"MASTODON_ACCESS_TOKEN" description:"Mastodon access token"`
	RedditSubs      string `long:"reddit-subs" env:"REDDIT_SUBREDDITS" description:"Comma-separated subreddits (defaults to the built-in list)"`
	XBearerToken    string `long:"x-bearer-token" env:"X_BEARER_TOKEN" description:"X API bearer token"`

	ClickEndpoint string `long:"click-endpoint" env:"CLICK_ENDPOINT" description:"Sponsor event endpoint; enables the page click hook and placement events"`

	CategoriesFile string `long:"categories" env:"CATEGORIES_FILE" default:"catalogs/categories.yaml" description:"Category priority table"`
	StoplistFile   string `long:"stoplist" env:"STOPLIST_FILE" description:"Optional stopword list"`
	AffiliatesFile string `long:"affiliates" env:"AFFILIATES_FILE" default:"catalogs/affiliates.yaml" description:"Affiliate catalog"`
	SeedsFile      string `long:"seeds" env:"SEEDS_FILE" default:"catalogs/seeds.yaml" description:"Seed site catalog"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(opts, log); err != nil {
		if errors.Is(err, internalerr.ErrNothingPublished) {
			log.Warn("run finished without publishing")
			os.Exit(3)
		}
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	cfg.SiteBrand = opts.SiteBrand
	cfg.SiteDomain = opts.SiteDomain
	cfg.PagesDir = opts.PagesDir
	cfg.OutDir = opts.OutDir
	cfg.ClickEndpoint = opts.ClickEndpoint

	st, err := sqlite.Open(ctx, opts.DBPath, cfg.FingerprintHistory)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	table, err := config.LoadCategoryTable(opts.CategoriesFile)
	if err != nil {
		return fmt.Errorf("load category table: %w", err)
	}

	var stopwords []string
	if opts.StoplistFile != "" {
		sl, err := config.LoadStoplist(opts.StoplistFile)
		if err != nil {
			return fmt.Errorf("load stoplist: %w", err)
		}
		stopwords = sl.Terms
	}

	if err := syncCatalogs(ctx, opts, st, log); err != nil {
		return err
	}

	runner := &collect.Runner{
		Collectors: buildCollectors(opts),
		Queries:    splitList(opts.Queries),
		PerQuery:   opts.PerQuery,
		Log:        log,
	}
	raws, diags := runner.Run(ctx)
	for _, d := range diags {
		log.Debug("collector diagnostic", "source", d.Source, "status", d.Status.String(), "items", d.Items)
	}

	var clicks goliath.ClickPoster
	if opts.ClickEndpoint != "" {
		clicks = &clicklog.Client{Endpoint: opts.ClickEndpoint, Log: log}
	}

	g, err := goliath.New(goliath.Options{
		Config: cfg,
		Store:  st,
		Generator: &llm.Client{
			BaseURL: opts.LLMBaseURL,
			APIKey:  opts.LLMAPIKey,
			Model:   opts.LLMModel,
		},
		CategoryTable: table,
		Stopwords:     stopwords,
		Clicks:        clicks,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	sum, runErr := g.Run(ctx, raws)
	if sum != nil {
		if path, werr := g.WriteSummary(sum); werr != nil {
			log.Warn("could not write run summary", "error", werr)
		} else {
			log.Info("run summary written", "path", path)
		}
	}
	return runErr
}

// syncCatalogs pushes the YAML affiliate and seed catalogs into the
// store so ranking and injection read one source of truth.
func syncCatalogs(ctx context.Context, opts options, st store.Store, log *slog.Logger) error {
	aff, err := config.LoadAffiliates(opts.AffiliatesFile)
	if err != nil {
		return fmt.Errorf("load affiliates: %w", err)
	}
	for category, entries := range aff.Categories {
		for _, e := range entries {
			if err := st.UpsertAffiliate(ctx, category, e); err != nil {
				return fmt.Errorf("sync affiliate %s: %w", e.ID, err)
			}
		}
	}

	seeds, err := config.LoadSeeds(opts.SeedsFile)
	if err != nil {
		return fmt.Errorf("load seeds: %w", err)
	}
	for _, s := range seeds.Sites {
		if err := st.UpsertSeed(ctx, s); err != nil {
			return fmt.Errorf("sync seed %s: %w", s.URL, err)
		}
	}

	log.Debug("catalogs synced", "affiliate_categories", len(aff.Categories), "seeds", len(seeds.Sites))
	return nil
}

func buildCollectors(opts options) []collect.Collector {
	enabled := map[string]bool{}
	for _, s := range splitList(opts.Sources) {
		enabled[strings.ToLower(s)] = true
	}

	var out []collect.Collector
	if enabled["hn"] {
		out = append(out, &collect.HN{DaysBack: opts.DaysBack})
	}
	if enabled["bluesky"] {
		out = append(out, &collect.Bluesky{})
	}
	if enabled["mastodon"] {
		out = append(out, &collect.Mastodon{APIBase: opts.MastodonAPIBase, AccessToken: opts.MastodonToken})
	}
	if enabled["reddit"] {
		out = append(out, &collect.Reddit{Subreddits: splitList(opts.RedditSubs)})
	}
	if enabled["x"] {
		out = append(out, &collect.X{BearerToken: opts.XBearerToken})
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
