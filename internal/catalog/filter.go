package catalog

import (
	"sort"
	"time"

	"github.com/david/syncscout/internal/models"
)

const (
	UrgentWindow       = 72 * time.Hour
	HighValueThreshold = 25000
)

// Filter narrows a catalog listing. Zero values disable a criterion.
type Filter struct {
	Category  models.Category
	Status    models.Status
	MinBudget int64
	MaxBudget int64
	Urgent    bool
	HighValue bool
}

// Apply returns the opportunities in opps that pass f. Category, urgent and
// high-value filters only consider available opportunities. High-value
// results are ordered by average payout, highest first.
func (f Filter) Apply(opps []models.Opportunity, now time.Time) []models.Opportunity {
	availableOnly := f.Category != "" || f.Urgent || f.HighValue
	out := make([]models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if o.Expired(now) {
			continue
		}
		if availableOnly && o.Status != models.StatusAvailable {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Category != "" && o.Category != f.Category {
			continue
		}
		if f.MinBudget > 0 || f.MaxBudget > 0 {
			rev := EstimateRevenue(o.Budget)
			if f.MinBudget > 0 && rev.Min < f.MinBudget {
				continue
			}
			if f.MaxBudget > 0 && rev.Max > f.MaxBudget {
				continue
			}
		}
		if f.Urgent && !isUrgent(o, now) {
			continue
		}
		if f.HighValue && EstimateRevenue(o.Budget).Average < HighValueThreshold {
			continue
		}
		out = append(out, o)
	}

	if f.HighValue {
		sort.SliceStable(out, func(i, j int) bool {
			return EstimateRevenue(out[i].Budget).Average > EstimateRevenue(out[j].Budget).Average
		})
	}
	return out
}

func isUrgent(o models.Opportunity, now time.Time) bool {
	return !o.Deadline.IsZero() && !o.Deadline.After(now.Add(UrgentWindow))
}

// Insights summarises the current catalog.
func (c *Catalog) Insights(now time.Time) models.Insights {
	s := c.load()
	in := models.Insights{
		Total:            len(s.items),
		ByCategory:       make(map[models.Category]int),
		BudgetBands:      map[string]int{"low": 0, "medium": 0, "high": 0},
		LastRefreshAt:    s.refreshedAt,
		LastRefreshAdded: s.lastAdded,
	}
	for _, o := range s.items {
		in.ByCategory[o.Category]++
		rev := EstimateRevenue(o.Budget)
		switch {
		case rev.Average < 10000:
			in.BudgetBands["low"]++
		case rev.Average < 30000:
			in.BudgetBands["medium"]++
		default:
			in.BudgetBands["high"]++
		}
		if o.Status != models.StatusAvailable || o.Expired(now) {
			continue
		}
		in.Available++
		if isUrgent(o, now) {
			in.UrgentCount++
		}
		if rev.Average >= HighValueThreshold {
			in.HighValueCount++
		}
	}
	return in
}
