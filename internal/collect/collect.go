// Package collect gathers raw problem reports from public social
// sources. Every collector degrades gracefully: missing credentials
// or a failed call produce a diagnostic, never an aborted run.
package collect

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
)

const userAgent = "goliath-collector/1.0"

// DefaultQueries are the search phrases used when the operator does
// not supply any.
var DefaultQueries = []string{
	"how do i", "how to", "error", "issue", "problem", "can't", "doesn't work",
	"convert", "calculator", "compare", "template", "timezone", "subscription",
}

// Status classifies how a collector run ended.
type Status int

const (
	StatusOK Status = iota
	StatusNoCredentials
	StatusFailed
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoCredentials:
		return "no-credentials"
	case StatusFailed:
		return "failed"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Diagnostic records how one source behaved during a run.
type Diagnostic struct {
	Source string
	Status Status
	Items  int
	Err    error
}

// Collector is one source of raw candidates.
type Collector interface {
	Name() string
	Collect(ctx context.Context, queries []string, perQuery int) ([]candidate.Raw, Diagnostic)
}

// Runner fans out over the configured collectors sequentially and
// merges their output.
type Runner struct {
	Collectors []Collector
	Queries    []string
	PerQuery   int
	Log        *slog.Logger
}

// Run collects from every source and returns the merged raw batch
// plus per-source diagnostics.
func (r *Runner) Run(ctx context.Context) ([]candidate.Raw, []Diagnostic) {
	queries := r.Queries
	if len(queries) == 0 {
		queries = DefaultQueries
	}
	perQuery := r.PerQuery
	if perQuery <= 0 {
		perQuery = 15
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	var raws []candidate.Raw
	var diags []Diagnostic
	for _, c := range r.Collectors {
		items, diag := c.Collect(ctx, queries, perQuery)
		diags = append(diags, diag)
		raws = append(raws, items...)

		switch diag.Status {
		case StatusOK:
			log.Info("collected", "source", diag.Source, "items", diag.Items)
		case StatusNoCredentials:
			log.Info("source skipped, no credentials", "source", diag.Source)
		case StatusEmpty:
			log.Warn("source returned nothing", "source", diag.Source)
		case StatusFailed:
			log.Warn("source failed", "source", diag.Source, "error", diag.Err)
		}
	}
	return raws, diags
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 20 * time.Second}
}

func diagnose(source string, items []candidate.Raw, err error) Diagnostic {
	d := Diagnostic{Source: source, Items: len(items)}
	switch {
	case err != nil:
		d.Status = StatusFailed
		d.Err = err
	case len(items) == 0:
		d.Status = StatusEmpty
	}
	return d
}
