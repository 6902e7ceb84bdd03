// Package matching ranks catalog opportunities against an analyzed track.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/models"
)

// MinScore is the lowest total score a match may have.
const MinScore = 60

const (
	weightGenre     = 0.40
	weightPotential = 0.30
	weightFeatures  = 0.20
	weightSocial    = 0.10
)

type Engine struct {
	compat Compatibility
}

func NewEngine(compat Compatibility) *Engine {
	return &Engine{compat: compat}
}

// Match scores every available, unexpired opportunity against the analysis
// and returns those scoring at least MinScore, best first. Ties keep
// catalog order.
func (e *Engine) Match(a models.Analysis, opps []models.Opportunity, now time.Time) []models.Match {
	out := make([]models.Match, 0)
	for _, o := range opps {
		if o.Status != models.StatusAvailable || o.Expired(now) {
			continue
		}
		total := e.Score(a, o)
		if total < MinScore {
			continue
		}
		out = append(out, e.build(a, o, total))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	return out
}

// Score is the weighted total for one opportunity, before rounding.
func (e *Engine) Score(a models.Analysis, o models.Opportunity) float64 {
	sum := e.genreScore(a.Genre.Genre, o.Genres)*weightGenre +
		potentialImpact(a.Score.Overall, o.Category)*weightPotential +
		socialMatch(a.Social.Overall, o.Category)*weightSocial
	weights := weightGenre + weightPotential + weightSocial

	if !o.Requirements.IsZero() {
		sum += featureMatch(a.Profile, o.Requirements) * weightFeatures
		weights += weightFeatures
	}
	return sum / weights
}

func (e *Engine) build(a models.Analysis, o models.Opportunity, total float64) models.Match {
	rev := catalog.EstimateRevenue(o.Budget)
	comp := catalog.CompetitionFor(rev)
	score := int(math.Floor(total + 0.5))

	return models.Match{
		TrackID:            a.TrackID,
		OpportunityID:      o.ID,
		Opportunity:        o,
		MatchScore:         score,
		Reasons:            e.reasons(a, o),
		EstimatedRevenue:   rev,
		Competition:        comp,
		SuccessProbability: successProbability(total, a.Score.Overall, comp),
	}
}

// genreScore is 100 for a substring match either way, 75 for a compatible
// pair and 0 otherwise. A track genre such as "Hip-Hop/Rap" is also
// checked part by part.
func (e *Engine) genreScore(trackGenre string, oppGenres []string) float64 {
	track := normGenre(trackGenre)
	if track == "" {
		return 0
	}
	parts := strings.Split(track, "/")

	best := 0.0
	for _, g := range oppGenres {
		og := normGenre(g)
		if og == "" {
			continue
		}
		if strings.Contains(track, og) || strings.Contains(og, track) {
			return 100
		}
		if e.compat.Compatible(track, og) {
			best = 75
			continue
		}
		for _, p := range parts {
			if e.compat.Compatible(p, og) {
				best = 75
				break
			}
		}
	}
	return best
}

func potentialImpact(overall int, cat models.Category) float64 {
	p := float64(overall)
	var v float64
	switch cat {
	case models.CategoryCommercial:
		v = p * 1.2
	case models.CategoryBroadcast:
		v = p * 1.1
	case models.CategoryFilm:
		v = p*0.9 + 10
	case models.CategoryGame:
		v = p
	case models.CategorySocial:
		v = p * 1.3
	case models.CategoryOther:
		v = p
	default:
		v = p
	}
	return math.Min(v, 100)
}

func socialMatch(social int, cat models.Category) float64 {
	s := float64(social)
	switch cat {
	case models.CategorySocial:
		return s
	case models.CategoryCommercial:
		return s * 0.8
	case models.CategoryBroadcast, models.CategoryFilm, models.CategoryGame, models.CategoryOther:
		return s * 0.4
	default:
		return s * 0.4
	}
}

// featureMatch averages the tempo, energy and danceability checks the
// requirements specify, or returns 50 when none apply.
func featureMatch(p models.FeatureProfile, req models.Requirements) float64 {
	var score float64
	checks := 0

	if req.Tempo != nil {
		checks++
		switch d := req.Tempo.Distance(p.Tempo); {
		case req.Tempo.Contains(p.Tempo):
			score += 100
		case d <= 20:
			score += 70
		case d <= 40:
			score += 40
		}
	}
	if req.Energy != nil {
		checks++
		if req.Energy.Contains(p.Energy) {
			score += 100
		}
	}
	if req.Danceability != nil {
		checks++
		if req.Danceability.Contains(p.Danceability) {
			score += 100
		}
	}

	if checks == 0 {
		return 50
	}
	return score / float64(checks)
}

func successProbability(total float64, overall int, comp models.Competition) int {
	p := total
	switch {
	case overall >= 85:
		p += 10
	case overall >= 75:
		p += 5
	}
	switch comp {
	case models.CompetitionVeryHigh:
		p -= 20
	case models.CompetitionHigh:
		p -= 10
	case models.CompetitionMedium:
	case models.CompetitionLow:
		p += 10
	}
	return max(5, min(int(math.Floor(p+0.5)), 95))
}

func (e *Engine) reasons(a models.Analysis, o models.Opportunity) []string {
	var out []string
	if e.genreScore(a.Genre.Genre, o.Genres) >= 75 {
		out = append(out, fmt.Sprintf("Perfect genre match: %s fits %s", a.Genre.Genre, strings.Join(o.Genres, ", ")))
	}
	if a.Score.Overall >= 80 {
		out = append(out, fmt.Sprintf("Exceptional hit potential (%d%%) ideal for %s", a.Score.Overall, o.Category))
	}
	if a.Social.Overall > 80 {
		out = append(out, "Excellent social media viral potential")
	}
	out = append(out, "Budget range: "+o.Budget)
	if len(out) > 4 {
		out = out[:4]
	}
	return out
}
