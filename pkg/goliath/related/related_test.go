package related

import (
	"strings"
	"testing"

	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/ingest"
	"github.com/mikanntool/goliath/pkg/goliath/store"
)

func testRanker(limit int) *Ranker {
	return NewRanker(ingest.NewTokenizer(nil, 0), limit)
}

func TestPickRanksByOverlap(t *testing.T) {
	inventory := []store.ToolEntry{
		{Title: "Timezone Planner", URL: "https://m.test/pages/tz/", Tags: []string{"timezone", "calendar"}},
		{Title: "CSV Cleaner", URL: "https://m.test/pages/csv/", Tags: []string{"csv", "convert"}},
	}
	seeds := []config.SeedEntry{
		{Title: "JSON Formatter", URL: "https://ext.test/json", Tags: []string{"json", "convert"}},
	}

	links := testRanker(8).Pick([]string{"csv", "convert", "json"}, "", inventory, seeds)
	if len(links) != 3 {
		t.Fatalf("links = %d", len(links))
	}
	if links[0].URL != "https://m.test/pages/csv/" {
		t.Errorf("best match = %q", links[0].URL)
	}
	if links[len(links)-1].URL != "https://m.test/pages/tz/" {
		t.Errorf("weakest match should rank last: %v", links)
	}
}

func TestPickExcludesOwnURLAndDuplicates(t *testing.T) {
	own := "https://m.test/pages/csv/"
	inventory := []store.ToolEntry{
		{Title: "CSV Cleaner", URL: own, Tags: []string{"csv"}},
		{Title: "CSV Cleaner Mirror", URL: "https://m.test/pages/csv2/", Tags: []string{"csv"}},
		{Title: "Duplicate URL", URL: "https://m.test/pages/csv2/", Tags: []string{"csv"}},
	}

	links := testRanker(8).Pick([]string{"csv"}, own, inventory, nil)
	if len(links) != 1 {
		t.Fatalf("links = %v", links)
	}
	if links[0].URL == own {
		t.Error("own URL not excluded")
	}
}

func TestPickBackfillsWithNewestInventory(t *testing.T) {
	inventory := []store.ToolEntry{
		{Title: "Newest", URL: "https://m.test/pages/new/", Tags: []string{"unrelated"}},
		{Title: "Older", URL: "https://m.test/pages/old/", Tags: []string{"unrelated"}},
	}
	seeds := []config.SeedEntry{
		{Title: "Seed", URL: "https://ext.test/seed", Tags: []string{"unrelated"}},
	}

	links := testRanker(2).Pick([]string{"csv"}, "", inventory, seeds)
	if len(links) != 2 {
		t.Fatalf("links = %v", links)
	}
	if links[0].Title != "Newest" || links[1].Title != "Older" {
		t.Errorf("backfill order wrong: %v", links)
	}
}

func TestInjectRewritesEmptyHook(t *testing.T) {
	page := "<html><body><script>window.__RELATED__ = []</script></body></html>"
	out, err := Inject(page, []Link{{Title: "CSV Cleaner", URL: "https://m.test/pages/csv/"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `window.__RELATED__ = [{"title":"CSV Cleaner","url":"https://m.test/pages/csv/"}]`) {
		t.Errorf("hook not rewritten: %s", out)
	}
}

func TestInjectAppendsDataScript(t *testing.T) {
	page := "<html><body><p>no hook</p></body></html>"
	out, err := Inject(page, []Link{{Title: "T", URL: "https://u"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<script id="related-data"`) {
		t.Errorf("data script missing: %s", out)
	}
	if strings.Index(out, "related-data") > strings.Index(out, "</body>") {
		t.Error("script injected after body close")
	}
}
