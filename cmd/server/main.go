package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/david/syncscout/internal/api"
	"github.com/david/syncscout/internal/cache"
	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/config"
	"github.com/david/syncscout/internal/db"
	"github.com/david/syncscout/internal/ingest"
	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/matching"
	"github.com/david/syncscout/internal/models"
	"github.com/david/syncscout/internal/scheduler"
	"github.com/david/syncscout/internal/scoring"
	"github.com/david/syncscout/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := scoring.NewTableStore(cfg.Scoring.MarketTablesPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load market tables")
	}
	templates, err := catalog.LoadTemplates(cfg.Catalog.TemplatesPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog templates")
	}

	cat := catalog.New(catalog.WithGenerator(catalog.NewGenerator(templates, cfg.Catalog.GeneratorSeed)))
	analyses := cache.New[models.Analysis](cfg.Cache.TTL, cache.WithMaxEntries(cfg.Cache.MaxEntries))

	yamlSeed := catalog.YAMLSeeder{Path: cfg.Catalog.SeedPath}
	var seeder catalog.Seeder = yamlSeed
	var recorder service.SubmissionRecorder
	var sink api.SeedSink

	if cfg.PersistenceEnabled() {
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := db.ApplyMigrations(ctx, pool); err != nil {
				logging.Fatal().Err(err).Msg("Migration failed")
			}
		}
		store := db.NewStore(pool)
		recorder, sink = store, store

		// Stored opportunities win; the YAML seed only fills an empty database.
		stored, err := store.SeedOpportunities(ctx, time.Now())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to read stored opportunities")
		}
		if len(stored) > 0 {
			seeder = store
		}
	}

	n, err := cat.Seed(ctx, seeder)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed catalog")
	}
	if _, fromYAML := seeder.(catalog.YAMLSeeder); fromYAML && sink != nil {
		if err := sink.SaveOpportunities(ctx, cat.List("")); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist seed opportunities")
		}
	}

	svc := service.New(service.Deps{
		Scorer: scoring.NewScorer(tables,
			scoring.WithSignal(scoring.NewSignal(cfg.Scoring.Signal, cfg.Scoring.Seed))),
		Catalog:  cat,
		Engine:   matching.NewEngine(matching.DefaultCompatibility()),
		Cache:    analyses,
		Recorder: recorder,
	})

	tasks := []scheduler.Task{
		scheduler.CatalogRefreshTask(cat),
		scheduler.TableReloadTask(tables),
		scheduler.CachePruneTask(analyses),
	}

	feeds, err := ingest.LoadRegistry(cfg.Catalog.FeedsPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load brief feeds")
	}
	var importOpts []ingest.Option
	if sink != nil {
		importOpts = append(importOpts, ingest.WithSink(sink))
	}
	if importer := ingest.NewImporter(feeds, cat, importOpts...); importer.Feeds() > 0 {
		tasks = append(tasks, scheduler.FeedImportTask(importer))
	}

	sched := scheduler.New(cfg.Catalog.RefreshInterval, tasks)

	srv, err := api.NewServer(svc, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		AdminSecret: cfg.Server.AdminSecret,
		TokenSecret: cfg.Server.TokenSecret,
		TokenTTL:    cfg.Server.TokenTTL,
		Refresher:   sched,
		Seeder:      yamlSeed,
		SeedSink:    sink,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build HTTP server")
	}

	tree := scheduler.NewSupervisor("syncscout")
	tree.Add(sched)
	tree.Add(api.NewHTTPService(srv, ":"+strconv.Itoa(cfg.Server.Port), cfg.Server.ShutdownTimeout))

	logging.Info().
		Int("port", cfg.Server.Port).
		Int("opportunities", n).
		Bool("persistence", cfg.PersistenceEnabled()).
		Str("signal", cfg.Scoring.Signal).
		Dur("refresh_interval", cfg.Catalog.RefreshInterval).
		Msg("Starting syncscout")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
	}
	logging.Info().Msg("Application stopped gracefully")
}
