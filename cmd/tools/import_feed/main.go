package main

import (
	"context"
	"flag"
	"time"

	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/db"
	"github.com/david/syncscout/internal/ingest"
	"github.com/david/syncscout/internal/logging"
)

func main() {
	feedID := flag.String("feed", "", "Feed ID to import (default: all enabled feeds)")
	feedsPath := flag.String("feeds", "", "Feed registry YAML (default: embedded)")
	flag.Parse()

	logging.Init(logging.Config{Format: "console"})

	reg, err := ingest.LoadRegistry(*feedsPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load feed registry")
	}
	if *feedID != "" {
		var picked []ingest.FeedConfig
		for _, f := range reg.Feeds {
			if f.ID == *feedID {
				f.Disabled = false
				picked = append(picked, f)
			}
		}
		if len(picked) == 0 {
			logging.Fatal().Str("feed", *feedID).Msg("Unknown feed")
		}
		reg = &ingest.Registry{Feeds: picked}
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, "")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		logging.Fatal().Err(err).Msg("Migration failed")
	}
	store := db.NewStore(pool)

	// Load what is already stored so known briefs are skipped.
	cat := catalog.New()
	if _, err := cat.Seed(ctx, store); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load stored opportunities")
	}

	start := time.Now()
	added, err := ingest.NewImporter(reg, cat, ingest.WithSink(store)).Import(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Import finished with errors")
	}
	logging.Info().
		Int("feeds", len(reg.Enabled())).
		Int("added", added).
		Dur("elapsed", time.Since(start)).
		Msg("Import finished")
}
