package publish

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/store"
)

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap builds the sitemap from the hub page plus every
// inventory entry, newest first.
func renderSitemap(domain string, tools []store.ToolEntry) ([]byte, error) {
	set := urlset{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: fmt.Sprintf("https://%s/hub/", domain)},
		},
	}
	for _, t := range tools {
		u := sitemapURL{Loc: t.URL}
		if !t.CreatedAt.IsZero() {
			u.LastMod = t.CreatedAt.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
