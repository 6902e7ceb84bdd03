// Package catalog holds the set of open sync opportunities.
//
// Readers load an immutable snapshot through an atomic pointer and never
// block. Writers serialize on a mutex, copy the current snapshot, modify the
// copy and publish it.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/metrics"
	"github.com/david/syncscout/internal/models"
)

type snapshot struct {
	items       []models.Opportunity
	index       map[string]int
	refreshedAt time.Time
	lastAdded   int
}

func newSnapshot(items []models.Opportunity, refreshedAt time.Time, added int) *snapshot {
	s := &snapshot{
		items:       items,
		index:       make(map[string]int, len(items)),
		refreshedAt: refreshedAt,
		lastAdded:   added,
	}
	for i, o := range items {
		s.index[o.ID] = i
	}
	return s
}

type Catalog struct {
	mu     sync.Mutex
	snap   atomic.Pointer[snapshot]
	gen    *Generator
	now    func() time.Time
	policy *bluemonday.Policy
	log    zerolog.Logger

	onPublish func([]models.Opportunity)
}

type Option func(*Catalog)

func WithGenerator(g *Generator) Option {
	return func(c *Catalog) { c.gen = g }
}

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

func New(opts ...Option) *Catalog {
	c := &Catalog{
		now:    time.Now,
		policy: bluemonday.StrictPolicy(),
		log:    logging.Component("catalog"),
	}
	for _, o := range opts {
		o(c)
	}
	c.snap.Store(newSnapshot(nil, time.Time{}, 0))
	return c
}

func (c *Catalog) load() *snapshot {
	return c.snap.Load()
}

func (c *Catalog) publish(s *snapshot) {
	c.snap.Store(s)
	if c.onPublish != nil {
		c.onPublish(s.items)
	}
	counts := make(map[models.Status]int)
	for _, o := range s.items {
		counts[o.Status]++
	}
	for _, st := range []models.Status{models.StatusAvailable, models.StatusSubmitted, models.StatusAccepted, models.StatusRejected} {
		metrics.CatalogOpportunities.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}

// Len returns the number of opportunities in the current snapshot.
func (c *Catalog) Len() int {
	return len(c.load().items)
}

// List returns the opportunities with the given status in catalog order.
// An empty status lists everything.
func (c *Catalog) List(status models.Status) []models.Opportunity {
	s := c.load()
	out := make([]models.Opportunity, 0, len(s.items))
	for _, o := range s.items {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func (c *Catalog) Get(id string) (models.Opportunity, error) {
	s := c.load()
	i, ok := s.index[id]
	if !ok {
		return models.Opportunity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[i], nil
}

// LastRefresh reports when Refresh last ran and how many opportunities it added.
func (c *Catalog) LastRefresh() (time.Time, int) {
	s := c.load()
	return s.refreshedAt, s.lastAdded
}

// Upsert inserts opp or replaces the entry with the same id in place.
func (c *Catalog) Upsert(opp models.Opportunity) (models.Opportunity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clean, err := c.normalize(opp)
	if err != nil {
		return models.Opportunity{}, err
	}

	cur := c.load()
	items := slices.Clone(cur.items)
	if i, ok := cur.index[clean.ID]; ok {
		items[i] = clean
	} else {
		items = append(items, clean)
	}
	c.publish(newSnapshot(items, cur.refreshedAt, cur.lastAdded))
	return clean, nil
}

// Load replaces the catalog contents. Duplicate ids keep the last entry.
func (c *Catalog) Load(opps []models.Opportunity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.Opportunity, 0, len(opps))
	index := make(map[string]int, len(opps))
	for _, o := range opps {
		clean, err := c.normalize(o)
		if err != nil {
			return err
		}
		if i, ok := index[clean.ID]; ok {
			items[i] = clean
			continue
		}
		index[clean.ID] = len(items)
		items = append(items, clean)
	}

	cur := c.load()
	c.publish(newSnapshot(items, cur.refreshedAt, cur.lastAdded))
	return nil
}

// Seed loads the catalog from seeder.
func (c *Catalog) Seed(ctx context.Context, seeder Seeder) (int, error) {
	opps, err := seeder.SeedOpportunities(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	if err := c.Load(opps); err != nil {
		return 0, err
	}
	c.log.Info().Int("count", len(opps)).Msg("catalog seeded")
	return len(opps), nil
}

// Expire removes every opportunity whose deadline is before now, whatever
// its status, and returns the removed entries marked expired.
func (c *Catalog) Expire(now time.Time) []models.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expireLocked(now)
}

func (c *Catalog) expireLocked(now time.Time) []models.Opportunity {
	cur := c.load()
	kept, removed := splitExpired(cur.items, now)
	if len(removed) == 0 {
		return nil
	}
	c.publish(newSnapshot(kept, cur.refreshedAt, cur.lastAdded))
	c.log.Info().Int("expired", len(removed)).Msg("expired opportunities removed")
	return removed
}

// splitExpired partitions items by deadline. Removed entries are marked expired.
func splitExpired(items []models.Opportunity, now time.Time) (kept, removed []models.Opportunity) {
	kept = make([]models.Opportunity, 0, len(items))
	for _, o := range items {
		if ComputeStatusDecision(o, now).Status == models.StatusExpired {
			o.Status = models.StatusExpired
			removed = append(removed, o)
			continue
		}
		kept = append(kept, o)
	}
	return kept, removed
}

// Refresh generates new opportunities, drops expired ones and publishes the
// result as one snapshot.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var fresh []models.Opportunity
	if c.gen != nil {
		fresh = c.gen.Generate(now)
	}

	cur := c.load()
	items := make([]models.Opportunity, 0, len(cur.items)+len(fresh))
	items = append(items, cur.items...)
	for _, o := range fresh {
		clean, err := c.normalize(o)
		if err != nil {
			return 0, fmt.Errorf("refresh catalog: %w", err)
		}
		items = append(items, clean)
	}
	kept, removed := splitExpired(items, now)
	c.publish(newSnapshot(kept, now, len(fresh)))

	c.log.Info().
		Int("added", len(fresh)).
		Int("expired", len(removed)).
		Int("total", len(kept)).
		Msg("catalog refreshed")
	return len(fresh), nil
}

// Transition moves one opportunity to a new status.
func (c *Catalog) Transition(id string, to models.Status, at time.Time) (models.Opportunity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.load()
	i, ok := cur.index[id]
	if !ok {
		return models.Opportunity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := applyTransition(cur.items[i], to, at)
	if err != nil {
		return models.Opportunity{}, err
	}

	items := slices.Clone(cur.items)
	items[i] = next
	c.publish(newSnapshot(items, cur.refreshedAt, cur.lastAdded))
	return next, nil
}

func (c *Catalog) normalize(o models.Opportunity) (models.Opportunity, error) {
	if o.Category == "" {
		o.Category = models.CategoryOther
	}
	cat, err := models.ParseCategory(string(o.Category))
	if err != nil {
		return models.Opportunity{}, err
	}
	o.Category = cat

	if strings.TrimSpace(o.ID) == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = models.StatusAvailable
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = c.now().UTC()
	}
	o.Title = c.sanitize(o.Title)
	o.Description = c.sanitize(o.Description)
	o.Source = c.sanitize(o.Source)

	o.Genres = slices.Clone(o.Genres)
	o.Moods = slices.Clone(o.Moods)
	o.Territories = slices.Clone(o.Territories)
	o.Requirements = cloneRequirements(o.Requirements)
	return o, nil
}

// sanitize strips markup from catalog text and returns it as plain text.
func (c *Catalog) sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	safe := c.policy.Sanitize(s)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(safe))
	if err != nil {
		return strings.Join(strings.Fields(safe), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func cloneRequirements(r models.Requirements) models.Requirements {
	cp := func(p *models.Range) *models.Range {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	return models.Requirements{
		Tempo:        cp(r.Tempo),
		Energy:       cp(r.Energy),
		Danceability: cp(r.Danceability),
		Valence:      cp(r.Valence),
	}
}
