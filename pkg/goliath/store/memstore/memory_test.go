package memstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/fingerprint"
	"github.com/mikanntool/goliath/pkg/goliath/store"
)

func TestToolsNewestFirst(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.AppendTool(ctx, store.ToolEntry{
			ID:        fmt.Sprintf("id-%d", i),
			Slug:      fmt.Sprintf("slug-%d", i),
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	tools, err := s.Tools(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 3 || tools[0].ID != "id-2" || tools[2].ID != "id-0" {
		t.Errorf("order wrong: %+v", tools)
	}
}

func TestSlugExists(t *testing.T) {
	s := New(0)
	ctx := context.Background()
	s.AppendTool(ctx, store.ToolEntry{ID: "x", Slug: "csv-fixer"})

	if ok, _ := s.SlugExists(ctx, "csv-fixer"); !ok {
		t.Error("existing slug not found")
	}
	if ok, _ := s.SlugExists(ctx, "other"); ok {
		t.Error("missing slug reported as taken")
	}
}

func TestFingerprintHistoryBounded(t *testing.T) {
	s := New(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.AppendFingerprint(ctx, fingerprint.Record{Fingerprint: fmt.Sprintf("fp-%d", i)})
	}

	recs, err := s.Fingerprints(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("history = %d, want 3", len(recs))
	}
	if recs[0].Fingerprint != "fp-2" || recs[2].Fingerprint != "fp-4" {
		t.Errorf("oldest not trimmed: %+v", recs)
	}
}

func TestAffiliatePriorityOrderingAndUpdate(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	s.UpsertAffiliate(ctx, "Dev/Tools", config.AffiliateEntry{ID: "low", Priority: 30})
	s.UpsertAffiliate(ctx, "Dev/Tools", config.AffiliateEntry{ID: "high", Priority: 80})

	entries, _ := s.Affiliates(ctx, "Dev/Tools")
	if len(entries) != 2 || entries[0].ID != "high" {
		t.Fatalf("entries = %+v", entries)
	}

	if err := s.UpdateAffiliatePriority(ctx, "low", 90); err != nil {
		t.Fatal(err)
	}
	entries, _ = s.Affiliates(ctx, "Dev/Tools")
	if entries[0].ID != "low" || entries[0].Priority != 90 {
		t.Errorf("priority update not applied: %+v", entries)
	}
}

func TestSeedsKeyedByURL(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	s.UpsertSeed(ctx, config.SeedEntry{URL: "https://b.test", Title: "B"})
	s.UpsertSeed(ctx, config.SeedEntry{URL: "https://a.test", Title: "A"})
	s.UpsertSeed(ctx, config.SeedEntry{URL: "https://a.test", Title: "A2"})

	seeds, _ := s.Seeds(ctx)
	if len(seeds) != 2 {
		t.Fatalf("seeds = %+v", seeds)
	}
	if seeds[0].Title != "A2" || seeds[1].Title != "B" {
		t.Errorf("seed order or upsert wrong: %+v", seeds)
	}
}
