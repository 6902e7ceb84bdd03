package scheduler

import (
	"context"
	"time"
)

// Task names used in logs and metric labels.
const (
	TaskCatalogRefresh = "catalog-refresh"
	TaskTableReload    = "market-table-reload"
	TaskCachePrune     = "cache-prune"
	TaskFeedImport     = "feed-import"
)

type refresher interface {
	Refresh(ctx context.Context) (int, error)
}

type importer interface {
	Import(ctx context.Context) (int, error)
}

type reloader interface {
	Reload(ctx context.Context) error
}

type pruner interface {
	Prune(now time.Time) int
}

// CatalogRefreshTask generates new opportunities and drops expired ones.
func CatalogRefreshTask(r refresher) Task {
	return Task{Name: TaskCatalogRefresh, Run: func(ctx context.Context) error {
		_, err := r.Refresh(ctx)
		return err
	}}
}

// TableReloadTask re-reads the market tables.
func TableReloadTask(r reloader) Task {
	return Task{Name: TaskTableReload, Run: r.Reload}
}

// CachePruneTask evicts expired analyses.
func CachePruneTask(p pruner) Task {
	return Task{Name: TaskCachePrune, Run: func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Prune(time.Now())
		return nil
	}}
}

// FeedImportTask pulls new briefs from the configured feeds.
func FeedImportTask(im importer) Task {
	return Task{Name: TaskFeedImport, Run: func(ctx context.Context) error {
		_, err := im.Import(ctx)
		return err
	}}
}
