package goliath

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikanntool/goliath/pkg/goliath/build"
	"github.com/mikanntool/goliath/pkg/goliath/candidate"
	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/internalerr"
	"github.com/mikanntool/goliath/pkg/goliath/score"
	"github.com/mikanntool/goliath/pkg/goliath/store/memstore"
)

const testPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title data-i18n="title">Tool</title></head>
<body>
<main>
<h1 data-i18n="h1">Tool</h1>
<p data-i18n="intro">Intro</p>
<label data-i18n="input_label">Input</label>
<button data-i18n="run">Run</button>
<span data-i18n="hint1">hint</span>
<span data-i18n="hint2">hint</span>
<span data-i18n="hint3">hint</span>
<span data-i18n="hint4">hint</span>
<span data-i18n="hint5">hint</span>
<span data-i18n="hint6">hint</span>
<span data-i18n="hint7">hint</span>
<select id="langSel"><option value="en">English</option></select>
<a href="/hub/" data-i18n="back">Back</a>
<!-- AFF_SLOT -->
<script>window.__RELATED__ = []</script>
</main>
<footer>
<a href="/privacy.html">Privacy</a>
<a href="/terms.html">Terms</a>
<a href="/disclaimer.html">Disclaimer</a>
<a href="/about.html">About</a>
<a href="/contact.html">Contact</a>
</footer>
</body>
</html>`

type fixedGenerator struct {
	page   string
	builds int
}

func (g *fixedGenerator) Build(ctx context.Context, req build.Request) (string, error) {
	g.builds++
	return g.page, nil
}

func (g *fixedGenerator) Patch(ctx context.Context, reason, current string) (string, error) {
	return "not a diff", nil
}

func testOptions(t *testing.T, st *memstore.Store, gen build.Generator) Options {
	t.Helper()
	cfg := config.Default()
	cfg.PagesDir = filepath.Join(t.TempDir(), "pages")
	cfg.OutDir = filepath.Join(t.TempDir(), "_out")
	return Options{Config: cfg, Store: st, Generator: gen}
}

func testRaws() []candidate.Raw {
	return []candidate.Raw{
		{Text: "how to convert csv file to json output", URL: "https://e/1", Source: "hn", Engagement: 40},
		{Text: "convert csv file into json quickly please", URL: "https://e/2", Source: "hn"},
		{Text: "csv file json convert helper wanted", URL: "https://e/3", Source: "bluesky"},
		{Text: "timezone planner for remote meetings", URL: "https://e/4", Source: "hn"},
	}
}

func TestRunPublishesOneSite(t *testing.T) {
	st := memstore.New(0)
	gen := &fixedGenerator{page: testPage}
	g, err := New(testOptions(t, st, gen))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	sum, err := g.Run(ctx, testRaws())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Published == "" || sum.URL == "" {
		t.Fatalf("summary = %+v", sum)
	}

	body, err := os.ReadFile(filepath.Join(g.cfg.PagesDir, sum.Published, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "window.__RELATED__ = [") {
		t.Error("related links not injected")
	}

	tools, _ := st.Tools(ctx)
	if len(tools) != 1 || tools[0].Slug != sum.Published {
		t.Errorf("inventory = %+v", tools)
	}

	recs, _ := st.Fingerprints(ctx)
	if len(recs) != 1 {
		t.Errorf("fingerprints = %d", len(recs))
	}

	if _, err := os.Stat(filepath.Join(g.cfg.PagesDir, "sitemap.xml")); err != nil {
		t.Errorf("sitemap not regenerated: %v", err)
	}
}

func TestRunRejectsDuplicateTheme(t *testing.T) {
	st := memstore.New(0)
	g, err := New(testOptions(t, st, &fixedGenerator{page: testPage}))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := g.Run(ctx, testRaws()); err != nil {
		t.Fatal(err)
	}

	sum, err := g.Run(ctx, testRaws())
	if !errors.Is(err, internalerr.ErrNothingPublished) {
		t.Fatalf("err = %v", err)
	}

	var sawDuplicate bool
	for _, r := range sum.Themes {
		if r.Outcome == "duplicate" {
			sawDuplicate = true
			if !strings.Contains(r.Reason, "competing fingerprint") {
				t.Errorf("reason = %q", r.Reason)
			}
			if r.Score >= 0 {
				t.Errorf("duplicate score = %d, penalty not applied", r.Score)
			}
			if r.Breakdown[score.DuplicatePenalty] != score.DuplicatePenaltyValue {
				t.Errorf("breakdown = %+v", r.Breakdown)
			}
		}
	}
	if !sawDuplicate {
		t.Errorf("no duplicate rejection recorded: %+v", sum.Themes)
	}

	tools, _ := st.Tools(ctx)
	if len(tools) != 1 {
		t.Errorf("second site published: %+v", tools)
	}
}

func TestRunFailsWhenEveryBuildInvalid(t *testing.T) {
	st := memstore.New(0)
	gen := &fixedGenerator{page: "<p>not a document</p>"}
	g, err := New(testOptions(t, st, gen))
	if err != nil {
		t.Fatal(err)
	}

	sum, err := g.Run(context.Background(), testRaws())
	if !errors.Is(err, internalerr.ErrNothingPublished) {
		t.Fatalf("err = %v", err)
	}
	if len(sum.Themes) == 0 {
		t.Fatal("no theme reports")
	}
	for _, r := range sum.Themes {
		if r.Outcome != "failed" {
			t.Errorf("outcome = %q", r.Outcome)
		}
		if r.Attempts != g.cfg.MaxAttempts {
			t.Errorf("attempts = %d", r.Attempts)
		}
		if r.Breakdown == nil {
			t.Error("failure diagnostic carries no score breakdown")
		}
	}

	if tools, _ := st.Tools(context.Background()); len(tools) != 0 {
		t.Errorf("failed run published: %+v", tools)
	}
}

func TestRunSyntheticFallbackWhenEmpty(t *testing.T) {
	st := memstore.New(0)
	g, err := New(testOptions(t, st, &fixedGenerator{page: testPage}))
	if err != nil {
		t.Fatal(err)
	}

	sum, err := g.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Published == "" {
		t.Fatal("synthetic fallback did not publish")
	}
	if len(sum.Themes) != 1 || sum.Themes[0].Source != "synthetic" {
		t.Errorf("themes = %+v", sum.Themes)
	}
}

type recordedEvent struct {
	event string
	adID  string
	page  string
}

type stubClicks struct {
	events []recordedEvent
}

func (s *stubClicks) Post(ctx context.Context, event, adID, page string) {
	s.events = append(s.events, recordedEvent{event, adID, page})
}

func TestRunAttachesClickHookAndRecordsPlacements(t *testing.T) {
	st := memstore.New(0)
	ctx := context.Background()
	st.UpsertAffiliate(ctx, "Dev/Tools", config.AffiliateEntry{
		ID: "deal-1", HTML: `<a href="https://sponsor.test">Deal</a>`, Priority: 60,
	})

	clicks := &stubClicks{}
	opts := testOptions(t, st, &fixedGenerator{page: testPage})
	opts.Config.ClickEndpoint = "https://t.test/api/click"
	opts.Clicks = clicks
	g, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}

	sum, err := g.Run(ctx, testRaws())
	if err != nil {
		t.Fatal(err)
	}

	if len(clicks.events) != 1 {
		t.Fatalf("events = %+v", clicks.events)
	}
	ev := clicks.events[0]
	if ev.event != "placement" || ev.adID != "deal-1" || ev.page != sum.Published {
		t.Errorf("event = %+v", ev)
	}

	body, err := os.ReadFile(filepath.Join(g.cfg.PagesDir, sum.Published, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`data-aff-id="deal-1"`,
		`data-page="` + sum.Published + `"`,
		`sendBeacon("https://t.test/api/click"`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("artifact missing %q", want)
		}
	}
}

func TestNamespaceTreatsStrayPageDirAsTaken(t *testing.T) {
	pages := t.TempDir()
	if err := os.MkdirAll(filepath.Join(pages, "csv-tool"), 0o755); err != nil {
		t.Fatal(err)
	}

	ns := &storeNamespace{ctx: context.Background(), st: memstore.New(0), pagesDir: pages}
	taken, err := ns.Exists("csv-tool")
	if err != nil {
		t.Fatal(err)
	}
	if !taken {
		t.Error("stray page directory reported free")
	}

	if taken, _ := ns.Exists("untouched"); taken {
		t.Error("free path reported taken")
	}
}

func TestWriteSummary(t *testing.T) {
	st := memstore.New(0)
	g, err := New(testOptions(t, st, &fixedGenerator{page: testPage}))
	if err != nil {
		t.Fatal(err)
	}

	sum, _ := g.Run(context.Background(), testRaws())
	path, err := g.WriteSummary(sum)
	if err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"published"`) {
		t.Errorf("summary body: %s", body)
	}
}
