// Package store defines persistence for the published-tool inventory,
// the fingerprint log, and the affiliate and seed catalogs.
package store

import (
	"context"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/fingerprint"
)

// ToolEntry is one published micro-site in the inventory. Entries are
// append-only; nothing ever rewrites or removes them.
type ToolEntry struct {
	ID        string
	Slug      string
	Title     string
	URL       string
	Category  string
	Tags      []string
	CreatedAt time.Time
}

// Store is the persistence boundary. Tools returns newest first.
// Fingerprint history is bounded; appending beyond the limit drops the
// oldest records.
type Store interface {
	AppendTool(ctx context.Context, e ToolEntry) error
	Tools(ctx context.Context) ([]ToolEntry, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	AppendFingerprint(ctx context.Context, rec fingerprint.Record) error
	Fingerprints(ctx context.Context) ([]fingerprint.Record, error)

	UpsertAffiliate(ctx context.Context, category string, e config.AffiliateEntry) error
	Affiliates(ctx context.Context, category string) ([]config.AffiliateEntry, error)
	UpdateAffiliatePriority(ctx context.Context, id string, priority int) error

	UpsertSeed(ctx context.Context, e config.SeedEntry) error
	Seeds(ctx context.Context) ([]config.SeedEntry, error)

	Close() error
}
