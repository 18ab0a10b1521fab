package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/fingerprint"
	"github.com/mikanntool/goliath/pkg/goliath/internalerr"
	"github.com/mikanntool/goliath/pkg/goliath/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db      *sql.DB
	history int
}

// Open opens a SQLite database with WAL mode enabled. history bounds
// the fingerprint log; appends beyond it drop the oldest records.
func Open(ctx context.Context, path string, history int) (store.Store, error) {
	if history <= 0 {
		history = 500
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db, history: history}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS tools (
	id TEXT PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	category TEXT,
	tags TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fingerprints (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	fingerprint TEXT NOT NULL,
	theme_text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS affiliates (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	title TEXT,
	html TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 50
);

CREATE TABLE IF NOT EXISTS seeds (
	url TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	tags TEXT
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// AppendTool inserts a published tool into the inventory.
func (s *sqliteStore) AppendTool(ctx context.Context, e store.ToolEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tools (id, slug, title, url, category, tags, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, e.ID, e.Slug, e.Title, e.URL, e.Category, joinTags(e.Tags), e.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// Tools returns the inventory, newest first.
func (s *sqliteStore) Tools(ctx context.Context) ([]store.ToolEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, slug, title, url, category, tags, created_at
FROM tools
ORDER BY created_at DESC, id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ToolEntry
	for rows.Next() {
		var e store.ToolEntry
		var tags, created string
		if err := rows.Scan(&e.ID, &e.Slug, &e.Title, &e.URL, &e.Category, &tags, &created); err != nil {
			return nil, err
		}
		e.Tags = splitTags(tags)
		if parsed, perr := time.Parse(time.RFC3339, created); perr == nil {
			e.CreatedAt = parsed
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SlugExists reports whether a slug is already occupied.
func (s *sqliteStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tools WHERE slug=?`, slug).Scan(&count)
	return count > 0, err
}

// AppendFingerprint records a published theme fingerprint and trims
// the log to the configured history bound.
func (s *sqliteStore) AppendFingerprint(ctx context.Context, rec fingerprint.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO fingerprints (fingerprint, theme_text) VALUES (?, ?);
`, rec.Fingerprint, rec.ThemeText); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM fingerprints
WHERE seq NOT IN (SELECT seq FROM fingerprints ORDER BY seq DESC LIMIT ?);
`, s.history); err != nil {
		return err
	}

	return tx.Commit()
}

// Fingerprints returns the fingerprint log, oldest first.
func (s *sqliteStore) Fingerprints(ctx context.Context) ([]fingerprint.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT fingerprint, theme_text FROM fingerprints ORDER BY seq ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fingerprint.Record
	for rows.Next() {
		var rec fingerprint.Record
		if err := rows.Scan(&rec.Fingerprint, &rec.ThemeText); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertAffiliate adds or replaces an affiliate catalog entry.
func (s *sqliteStore) UpsertAffiliate(ctx context.Context, category string, e config.AffiliateEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO affiliates (id, category, title, html, priority)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	category=excluded.category,
	title=excluded.title,
	html=excluded.html,
	priority=excluded.priority;
`, e.ID, category, e.Title, e.HTML, e.Priority)
	return err
}

// Affiliates returns catalog entries for a category, priority
// descending.
func (s *sqliteStore) Affiliates(ctx context.Context, category string) ([]config.AffiliateEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, html, priority
FROM affiliates
WHERE category=?
ORDER BY priority DESC, id ASC;
`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []config.AffiliateEntry
	for rows.Next() {
		var e config.AffiliateEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.HTML, &e.Priority); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateAffiliatePriority rewrites a single entry's priority.
func (s *sqliteStore) UpdateAffiliatePriority(ctx context.Context, id string, priority int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE affiliates SET priority=? WHERE id=?`, priority, id)
	return err
}

// UpsertSeed adds or replaces a seed catalog entry, keyed by URL.
func (s *sqliteStore) UpsertSeed(ctx context.Context, e config.SeedEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO seeds (url, title, tags) VALUES (?, ?, ?)
ON CONFLICT(url) DO UPDATE SET title=excluded.title, tags=excluded.tags;
`, e.URL, e.Title, joinTags(e.Tags))
	return err
}

// Seeds returns the seed catalog ordered by URL.
func (s *sqliteStore) Seeds(ctx context.Context) ([]config.SeedEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, title, tags FROM seeds ORDER BY url ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []config.SeedEntry
	for rows.Next() {
		var e config.SeedEntry
		var tags string
		if err := rows.Scan(&e.URL, &e.Title, &tags); err != nil {
			return nil, err
		}
		e.Tags = splitTags(tags)
		out = append(out, e)
	}
	return out, rows.Err()
}

func joinTags(tags []string) string {
	var clean []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
