package ingest

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"github.com/david/syncscout/internal/logging"
)

// Document is one fetched page or file.
type Document struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// CollyFetcher fetches single pages with colly, retrying failed requests.
type CollyFetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	RetryBackoff   time.Duration
	DomainDelay    time.Duration
	MaxBodySize    int // bytes, 0 = unlimited

	log zerolog.Logger
}

func NewCollyFetcher() *CollyFetcher {
	return &CollyFetcher{
		UserAgent:      "syncscout/1.0 (+brief-import)",
		MaxRetries:     2,
		RequestTimeout: 30 * time.Second,
		RetryBackoff:   time.Second,
		DomainDelay:    time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		log:            logging.Component("ingest"),
	}
}

// ForFeed returns a copy tuned by the feed's fetch settings.
func (f *CollyFetcher) ForFeed(cfg FetchConfig) *CollyFetcher {
	cp := *f
	if cfg.TimeoutSeconds > 0 {
		cp.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		cp.MaxRetries = cfg.MaxRetries
	}
	if cfg.DelayMillis > 0 {
		cp.DomainDelay = time.Duration(cfg.DelayMillis) * time.Millisecond
	}
	if cfg.UserAgent != "" {
		cp.UserAgent = cfg.UserAgent
	}
	return &cp
}

func (f *CollyFetcher) buildCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
	)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
	})
	c.SetRequestTimeout(f.RequestTimeout)
	return c
}

// Fetch downloads targetURL. Non-2xx responses are errors.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(targetURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	c := f.buildCollector()

	var doc *Document
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		doc = &Document{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        r.Body,
			FetchedAt:   time.Now(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		if retries < f.MaxRetries && ctx.Err() == nil {
			r.Request.Ctx.Put("retries", retries+1)
			f.log.Debug().Str("url", targetURL).Int("attempt", retries+1).Err(err).Msg("retrying fetch")
			time.Sleep(time.Duration(retries+1) * f.RetryBackoff)
			if rerr := r.Request.Retry(); rerr != nil {
				fetchErr = fmt.Errorf("fetch %s: %w", targetURL, rerr)
			}
			return
		}
		fetchErr = fmt.Errorf("fetch %s failed after %d retries: %w", targetURL, retries, err)
	})

	visitErr := c.Visit(targetURL)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc != nil {
		return doc, nil
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("visit failed: %w", visitErr)
	}
	return nil, fmt.Errorf("no response received for %s", targetURL)
}
