package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCategories is the full genre list the catalogs are organized
// around.
var DefaultCategories = []string{
	"Web/Hosting",
	"Dev/Tools",
	"AI/Automation",
	"Security/Privacy",
	"Media: Video/Audio",
	"PDF/Docs",
	"Images/Design",
	"Data/Spreadsheets",
	"Business/Accounting/Tax",
	"Marketing/Social",
	"Productivity",
	"Education/Language",
}

// CategoryRule is one entry of the ordered category priority table.
// The first rule whose trigger keywords intersect the cluster text wins.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Boost    float64  `yaml:"boost"` // score multiplier, 0 means 1.0
}

// CategoryTable is the full first-match priority table plus the
// fallback category applied when no rule triggers.
type CategoryTable struct {
	Rules   []CategoryRule `yaml:"rules"`
	Default string         `yaml:"default"`
}

// DefaultCategoryTable returns the built-in priority table used when no
// catalog file is present. Order matters; earlier rules win.
func DefaultCategoryTable() *CategoryTable {
	return &CategoryTable{
		Rules: []CategoryRule{
			{Name: "Data/Spreadsheets", Keywords: []string{"csv", "excel", "spreadsheet", "json"}, Boost: 1.5},
			{Name: "PDF/Docs", Keywords: []string{"pdf", "docx", "document"}, Boost: 1.3},
			{Name: "Images/Design", Keywords: []string{"image", "png", "jpg", "svg", "resize"}, Boost: 1.2},
			{Name: "Media: Video/Audio", Keywords: []string{"video", "audio", "mp4", "mp3", "subtitle"}},
			{Name: "Web/Hosting", Keywords: []string{"dns", "ssl", "domain", "hosting", "deploy"}},
			{Name: "Security/Privacy", Keywords: []string{"password", "2fa", "phishing", "vpn"}},
			{Name: "AI/Automation", Keywords: []string{"chatgpt", "prompt", "automation", "workflow"}},
			{Name: "Business/Accounting/Tax", Keywords: []string{"invoice", "tax", "accounting", "payroll"}},
			{Name: "Marketing/Social", Keywords: []string{"seo", "instagram", "hashtag", "newsletter"}},
			{Name: "Education/Language", Keywords: []string{"grammar", "translate", "flashcard"}},
			{Name: "Productivity", Keywords: []string{"timezone", "calendar", "checklist", "template"}},
		},
		Default: "Dev/Tools",
	}
}

// LoadCategoryTable loads the category priority table from a YAML file.
// A missing file yields the built-in table.
func LoadCategoryTable(path string) (*CategoryTable, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultCategoryTable(), nil
	}
	if err != nil {
		return nil, err
	}

	var tab CategoryTable
	if err := yaml.Unmarshal(data, &tab); err != nil {
		return nil, fmt.Errorf("parse category table: %w", err)
	}
	if tab.Default == "" {
		tab.Default = "Dev/Tools"
	}

	return &tab, nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist: %w", err)
	}

	return &sl, nil
}

// AffiliateFile is the on-disk shape of the sponsor catalog:
// category name → sponsor entries.
type AffiliateFile struct {
	Categories map[string][]AffiliateEntry `yaml:"categories"`
}

// AffiliateEntry is one sponsor snippet scoped to a category.
type AffiliateEntry struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	HTML     string `yaml:"html"`
	Priority int    `yaml:"priority"`
}

// LoadAffiliates loads the sponsor catalog from a YAML file. A missing
// file is not an error; affiliates are optional.
func LoadAffiliates(path string) (*AffiliateFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &AffiliateFile{Categories: map[string][]AffiliateEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var af AffiliateFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parse affiliates: %w", err)
	}
	if af.Categories == nil {
		af.Categories = map[string][]AffiliateEntry{}
	}

	return &af, nil
}

// SeedFile is the external related-link seed catalog.
type SeedFile struct {
	Sites []SeedEntry `yaml:"sites"`
}

// SeedEntry is one external catalog entry with tags.
type SeedEntry struct {
	Title string   `yaml:"title"`
	URL   string   `yaml:"url"`
	Tags  []string `yaml:"tags"`
}

// LoadSeeds loads the seed catalog from a YAML file. Missing file means
// an empty catalog.
func LoadSeeds(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &SeedFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse seeds: %w", err)
	}

	return &sf, nil
}
