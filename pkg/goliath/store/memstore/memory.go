package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/fingerprint"
	"github.com/mikanntool/goliath/pkg/goliath/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu           sync.RWMutex
	history      int
	tools        []store.ToolEntry
	fingerprints []fingerprint.Record
	affiliates   map[string][]config.AffiliateEntry
	seeds        map[string]config.SeedEntry
}

// New creates a new in-memory store. history bounds the fingerprint
// log the same way the SQLite store does.
func New(history int) *Store {
	if history <= 0 {
		history = 500
	}
	return &Store{
		history:    history,
		affiliates: make(map[string][]config.AffiliateEntry),
		seeds:      make(map[string]config.SeedEntry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// AppendTool appends a published tool, newest first.
func (s *Store) AppendTool(ctx context.Context, e store.ToolEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append([]store.ToolEntry{e}, s.tools...)
	return nil
}

// Tools returns the inventory, newest first.
func (s *Store) Tools(ctx context.Context) ([]store.ToolEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.ToolEntry, len(s.tools))
	copy(out, s.tools)
	return out, nil
}

// SlugExists reports whether a slug is already occupied.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.tools {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// AppendFingerprint records a fingerprint, trimming the oldest when
// the history bound is exceeded.
func (s *Store) AppendFingerprint(ctx context.Context, rec fingerprint.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints = append(s.fingerprints, rec)
	if len(s.fingerprints) > s.history {
		s.fingerprints = s.fingerprints[len(s.fingerprints)-s.history:]
	}
	return nil
}

// Fingerprints returns the fingerprint log, oldest first.
func (s *Store) Fingerprints(ctx context.Context) ([]fingerprint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fingerprint.Record, len(s.fingerprints))
	copy(out, s.fingerprints)
	return out, nil
}

// UpsertAffiliate adds or replaces an affiliate entry by ID.
func (s *Store) UpsertAffiliate(ctx context.Context, category string, e config.AffiliateEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cat, entries := range s.affiliates {
		for i, existing := range entries {
			if existing.ID == e.ID {
				s.affiliates[cat] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}
	s.affiliates[category] = append(s.affiliates[category], e)
	return nil
}

// Affiliates returns entries for a category, priority descending.
func (s *Store) Affiliates(ctx context.Context, category string) ([]config.AffiliateEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.affiliates[category]
	out := make([]config.AffiliateEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateAffiliatePriority rewrites a single entry's priority.
func (s *Store) UpdateAffiliatePriority(ctx context.Context, id string, priority int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cat, entries := range s.affiliates {
		for i := range entries {
			if entries[i].ID == id {
				s.affiliates[cat][i].Priority = priority
				return nil
			}
		}
	}
	return nil
}

// UpsertSeed adds or replaces a seed entry, keyed by URL.
func (s *Store) UpsertSeed(ctx context.Context, e config.SeedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeds[e.URL] = e
	return nil
}

// Seeds returns the seed catalog ordered by URL.
func (s *Store) Seeds(ctx context.Context) ([]config.SeedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]string, 0, len(s.seeds))
	for u := range s.seeds {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	out := make([]config.SeedEntry, 0, len(urls))
	for _, u := range urls {
		out = append(out, s.seeds[u])
	}
	return out, nil
}
