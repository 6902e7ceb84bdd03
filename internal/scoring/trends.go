package scoring

import "github.com/david/syncscout/internal/models"

const (
	trendRelevanceFloor     = 0.6
	opportunityRelevanceMin = 0.7
)

// AlignTrends scores how well the market's active trends favour genre.
func AlignTrends(genre string, t *Tables) models.TrendAnalysis {
	out := models.TrendAnalysis{
		Trends:            []string{},
		Recommendations:   []string{},
		MarketOpportunity: "Limited Opportunity",
	}
	if t == nil {
		return out
	}

	var (
		weighted   float64
		n          int
		impactSum  float64
		impactSeen int
	)
	for _, tr := range t.Trends {
		if !tr.Active {
			continue
		}
		rel := tr.RelevanceFor(genre)
		if rel <= trendRelevanceFloor {
			continue
		}
		out.Trends = append(out.Trends, tr.Name)
		out.Recommendations = append(out.Recommendations, tr.Recommendations...)
		weighted += tr.Impact * rel
		n++
		if rel > opportunityRelevanceMin {
			impactSum += tr.Impact
			impactSeen++
		}
	}

	if n > 0 {
		out.TrendScore = weighted / float64(n)
	}
	if impactSeen > 0 {
		out.MarketOpportunity = marketOpportunity(impactSum / float64(impactSeen))
	}
	return out
}

func marketOpportunity(avgImpact float64) string {
	switch {
	case avgImpact > 25:
		return "High Opportunity"
	case avgImpact > 15:
		return "Moderate Opportunity"
	default:
		return "Limited Opportunity"
	}
}
