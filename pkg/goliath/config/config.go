// Package config holds the immutable run configuration and the YAML
// catalog loaders. One Config is built in main and passed to every
// component at construction time; nothing reads the environment or
// seeds global state after that.
package config

import (
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/internalerr"
)

// Config is the complete tuning surface of a pipeline run.
type Config struct {
	// Similarity thresholds. Both are heuristics carried over from the
	// original system, kept tunable rather than hard-coded.
	ClusterThreshold   float64 // token-Jaccard seed similarity, default 0.22
	DuplicateThreshold float64 // token-Jaccard against history, default 0.80

	// Candidate intake.
	MaxCollect    int // total candidate cap per run
	MaxTokens     int // per-candidate token cap
	MinCandidates int // below this the run falls back to a synthetic theme

	// Theme selection.
	MaxThemes      int
	TopKeywords    int
	MinProblems    int
	MaxProblems    int
	SizeWeight     float64
	SolvableWeight float64
	ToolWeight     float64

	// Build loop.
	MaxAttempts     int
	MinI18nBindings int

	// Publication surfaces.
	RelatedLimit   int
	AffiliateLimit int
	SlugMaxLen     int

	// Fingerprint history retention (oldest trimmed beyond this).
	FingerprintHistory int

	// Site identity, used in artifacts and indices.
	SiteBrand    string
	SiteDomain   string
	ContactEmail string

	// Click tracking endpoint for the sponsor hook; empty disables it.
	ClickEndpoint string

	// Filesystem layout.
	PagesDir string
	OutDir   string

	// External call budget.
	HTTPTimeout time.Duration
}

// Default returns the configuration matching the original system's
// constants.
func Default() Config {
	return Config{
		ClusterThreshold:   0.22,
		DuplicateThreshold: 0.80,
		MaxCollect:         260,
		MaxTokens:          80,
		MinCandidates:      12,
		MaxThemes:          6,
		TopKeywords:        12,
		MinProblems:        10,
		MaxProblems:        20,
		SizeWeight:         1.8,
		SolvableWeight:     0.4,
		ToolWeight:         0.6,
		MaxAttempts:        5,
		MinI18nBindings:    12,
		RelatedLimit:       8,
		AffiliateLimit:     2,
		SlugMaxLen:         64,
		FingerprintHistory: 500,
		SiteBrand:          "Mikanntool",
		SiteDomain:         "mikanntool.com",
		ContactEmail:       "contact@mikanntool.com",
		PagesDir:           "pages",
		OutDir:             "_out",
		HTTPTimeout:        20 * time.Second,
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.ClusterThreshold <= 0 || c.ClusterThreshold >= 1:
		return internalerr.ErrInvalidConfig
	case c.DuplicateThreshold <= 0 || c.DuplicateThreshold > 1:
		return internalerr.ErrInvalidConfig
	case c.MaxThemes < 1 || c.MaxAttempts < 1:
		return internalerr.ErrInvalidConfig
	case c.MinProblems > c.MaxProblems:
		return internalerr.ErrInvalidConfig
	case c.SiteDomain == "" || c.PagesDir == "" || c.OutDir == "":
		return internalerr.ErrInvalidConfig
	}
	return nil
}
