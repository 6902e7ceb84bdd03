package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/metrics"
	"github.com/david/syncscout/internal/models"
)

// Catalog is the part of the opportunity catalog the importer writes to.
type Catalog interface {
	Get(id string) (models.Opportunity, error)
	Upsert(opp models.Opportunity) (models.Opportunity, error)
}

// Sink stores imported opportunities.
type Sink interface {
	SaveOpportunities(ctx context.Context, opps []models.Opportunity) error
}

type Importer struct {
	feeds   []FeedConfig
	catalog Catalog
	sink    Sink
	fetcher func(FetchConfig) Fetcher
	now     func() time.Time
	log     zerolog.Logger
}

type Option func(*Importer)

// WithFetcher uses f for every feed instead of a colly fetcher.
func WithFetcher(f Fetcher) Option {
	return func(im *Importer) {
		im.fetcher = func(FetchConfig) Fetcher { return f }
	}
}

func WithSink(s Sink) Option {
	return func(im *Importer) { im.sink = s }
}

func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

func NewImporter(reg *Registry, cat Catalog, opts ...Option) *Importer {
	base := NewCollyFetcher()
	im := &Importer{
		catalog: cat,
		fetcher: func(cfg FetchConfig) Fetcher { return base.ForFeed(cfg) },
		now:     time.Now,
		log:     logging.Component("ingest"),
	}
	if reg != nil {
		im.feeds = reg.Enabled()
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// Feeds returns the number of enabled feeds.
func (im *Importer) Feeds() int {
	return len(im.feeds)
}

// Import polls every feed and adds briefs the catalog does not hold yet.
// A failing feed does not stop the others; their errors are joined.
func (im *Importer) Import(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, feed := range im.feeds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := im.importFeed(ctx, feed)
		total += n
		if err != nil {
			im.log.Warn().Err(err).Str("feed", feed.ID).Msg("feed import failed")
			errs = append(errs, fmt.Errorf("feed %s: %w", feed.ID, err))
			continue
		}
		im.log.Info().Str("feed", feed.ID).Int("added", n).Msg("feed imported")
	}
	return total, errors.Join(errs...)
}

func (im *Importer) importFeed(ctx context.Context, feed FeedConfig) (int, error) {
	fetcher := im.fetcher(feed.Fetch)
	doc, err := fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return 0, err
	}
	now := im.now()
	briefs, err := ParseListing(doc, feed, now)
	if err != nil {
		return 0, err
	}

	var added []models.Opportunity
	var upsertErr error
	for _, b := range briefs {
		if _, err := im.catalog.Get(b.Opportunity.ID); err == nil {
			continue
		}
		opp := b.Opportunity
		if opp.Deadline.IsZero() && feed.DeadlineFromPDF && isPDFLink(b.Link) {
			d, err := deadlineFromPDF(ctx, fetcher, b.Link, now)
			if err != nil {
				im.log.Debug().Err(err).Str("brief", opp.ID).Msg("no deadline in pdf brief")
			} else {
				opp.Deadline = d
			}
		}
		if opp.Expired(now) {
			continue
		}
		stored, err := im.catalog.Upsert(opp)
		if err != nil {
			upsertErr = fmt.Errorf("add brief %s: %w", opp.ID, err)
			break
		}
		added = append(added, stored)
	}

	// whatever reached the catalog is persisted, even after a failed upsert
	metrics.FeedBriefsImported.WithLabelValues(feed.ID).Add(float64(len(added)))
	if im.sink != nil && len(added) > 0 {
		if err := im.sink.SaveOpportunities(ctx, added); err != nil {
			return len(added), errors.Join(upsertErr, fmt.Errorf("persist briefs: %w", err))
		}
	}
	return len(added), upsertErr
}
