// Package publish commits validated artifacts to the output tree and
// the inventory, and regenerates the site-wide index files.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mikanntool/goliath/pkg/goliath/store"
)

// Publisher writes artifacts under the pages directory and records
// them in the inventory. Writes are atomic; a failed write leaves
// both the filesystem and the inventory untouched.
type Publisher struct {
	pagesDir string
	domain   string
	st       store.Store
	log      *slog.Logger
}

// New constructs a publisher. domain is the canonical site host used
// for inventory URLs and the sitemap.
func New(pagesDir, domain string, st store.Store, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return &Publisher{pagesDir: pagesDir, domain: strings.TrimSuffix(domain, "/"), st: st, log: log}
}

// URLFor returns the canonical URL for a slug.
func (p *Publisher) URLFor(slug string) string {
	return fmt.Sprintf("https://%s/pages/%s/", p.domain, slug)
}

// Publish writes the artifact to pages/<slug>/index.html and appends
// the inventory entry. The artifact lands via a temp file and rename
// so a crash never leaves a partial page behind, and a failed
// inventory append removes the page again: the slug namespace is
// backed by the inventory, so an orphaned directory would be silently
// overwritten by a later run.
func (p *Publisher) Publish(ctx context.Context, slug, title, category string, tags []string, artifact string) (store.ToolEntry, error) {
	dir := filepath.Join(p.pagesDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store.ToolEntry{}, fmt.Errorf("create page dir: %w", err)
	}

	if err := atomicWrite(filepath.Join(dir, "index.html"), []byte(artifact)); err != nil {
		os.RemoveAll(dir)
		return store.ToolEntry{}, fmt.Errorf("write artifact: %w", err)
	}

	entry := store.ToolEntry{
		ID:        ulid.Make().String(),
		Slug:      slug,
		Title:     title,
		URL:       p.URLFor(slug),
		Category:  category,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.st.AppendTool(ctx, entry); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			p.log.Warn("could not remove orphaned page", "slug", slug, "error", rmErr)
		}
		return store.ToolEntry{}, fmt.Errorf("record inventory: %w", err)
	}

	p.log.Info("published", "slug", slug, "url", entry.URL)
	return entry, nil
}

// RegenerateIndexes rewrites sitemap.xml and robots.txt from the
// current inventory.
func (p *Publisher) RegenerateIndexes(ctx context.Context) error {
	tools, err := p.st.Tools(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.pagesDir, 0o755); err != nil {
		return err
	}

	sitemap, err := renderSitemap(p.domain, tools)
	if err != nil {
		return err
	}
	if err := atomicWrite(filepath.Join(p.pagesDir, "sitemap.xml"), sitemap); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}

	robots := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: https://%s/pages/sitemap.xml\n", p.domain)
	if err := atomicWrite(filepath.Join(p.pagesDir, "robots.txt"), []byte(robots)); err != nil {
		return fmt.Errorf("write robots: %w", err)
	}
	return nil
}

// atomicWrite lands content via a temp file and rename in the target
// directory.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".publish-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
