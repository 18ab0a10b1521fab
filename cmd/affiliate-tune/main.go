// affiliate-tune refreshes affiliate priorities from click stats:
// entries with recent clicks rise, idle ones settle at the floor.
// Only entries whose priority actually changes are rewritten.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/mikanntool/goliath/internal/clicklog"
	"github.com/mikanntool/goliath/pkg/goliath/affiliate"
	"github.com/mikanntool/goliath/pkg/goliath/config"
	"github.com/mikanntool/goliath/pkg/goliath/store"
	"github.com/mikanntool/goliath/pkg/goliath/store/sqlite"
)

type options struct {
	DBPath string `long:"db" env:"GOLIATH_DB" default:"goliath.db" description:"SQLite database path"`

	StatsEndpoint string `long:"stats-endpoint" env:"CLICK_STATS_ENDPOINT" description:"Click stats endpoint (required)" required:"true"`
	StatsToken    string `long:"stats-token" env:"CLICK_STATS_TOKEN" description:"Bearer token for the stats endpoint"`
	StatsDays     int    `long:"stats-days" env:"CLICK_STATS_DAYS" default:"7" description:"Stats window in days"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(opts, log); err != nil {
		log.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, log *slog.Logger) error {
	ctx := context.Background()

	st, err := sqlite.Open(ctx, opts.DBPath, 0)
	if err != nil {
		return err
	}
	defer st.Close()

	cl := &clicklog.Client{Endpoint: opts.StatsEndpoint, Token: opts.StatsToken, Log: log}
	clicks, err := cl.Stats(ctx, opts.StatsDays)
	if err != nil {
		return err
	}
	log.Info("click stats fetched", "entries", len(clicks))

	changed := 0
	for _, category := range config.DefaultCategories {
		entries, err := st.Affiliates(ctx, category)
		if err != nil {
			return err
		}
		n, err := tuneCategory(ctx, st, entries, clicks, log)
		if err != nil {
			return err
		}
		changed += n
	}

	log.Info("priorities updated", "changed", changed)
	return nil
}

func tuneCategory(ctx context.Context, st store.Store, entries []config.AffiliateEntry, clicks map[string]int, log *slog.Logger) (int, error) {
	changed := 0
	for _, e := range entries {
		// No clicks means no signal; the existing (possibly
		// hand-set) priority stands.
		if clicks[e.ID] <= 0 {
			continue
		}
		next := affiliate.Priority(clicks[e.ID])
		if next == e.Priority {
			continue
		}
		if err := st.UpdateAffiliatePriority(ctx, e.ID, next); err != nil {
			return changed, err
		}
		log.Debug("priority changed", "id", e.ID, "from", e.Priority, "to", next, "clicks", clicks[e.ID])
		changed++
	}
	return changed, nil
}
