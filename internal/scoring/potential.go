package scoring

import (
	"errors"
	"math"
	"time"

	"github.com/david/syncscout/internal/models"
)

// Scorer runs the full analysis pipeline for a feature profile. It holds no
// per-track state; the same inputs and signal always give the same output.
type Scorer struct {
	tables *TableStore
	signal QualitySignal
	now    func() time.Time
}

type Option func(*Scorer)

// WithSignal sets the quality signal. The default contributes nothing.
func WithSignal(q QualitySignal) Option {
	return func(s *Scorer) {
		if q != nil {
			s.signal = q
		}
	}
}

// WithClock overrides the clock used for ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

func NewScorer(tables *TableStore, opts ...Option) *Scorer {
	s := &Scorer{tables: tables, signal: NoSignal{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Analyze validates the profile and computes the score together with every
// intermediate result. Version is left at zero for the caller to assign.
func (s *Scorer) Analyze(trackID string, p models.FeatureProfile) (models.Analysis, error) {
	if err := ValidateProfile(p); err != nil {
		return models.Analysis{}, err
	}
	if s.tables == nil {
		return models.Analysis{}, ErrEmptyMarketTable
	}
	t := s.tables.Current()

	genre, err := ClassifyGenre(p, t)
	if err != nil {
		return models.Analysis{}, err
	}
	trends := AlignTrends(genre.Genre, t)
	social := EstimateSocial(p, s.signal)
	chart := CompareToCharts(p, t, s.signal)
	factors := HitFactors(p, s.signal)
	chartScore := ChartScore(factors, chart)

	overall := 40 +
		float64(chartScore)*0.35 +
		(genre.Popularity+genre.Growth)*0.25 +
		trends.TrendScore*0.20 +
		float64(social.Overall)*0.15 +
		5*measure(s.signal, p, FactorProduction)

	score := models.PotentialScore{
		TrackID:    trackID,
		Overall:    clampScore(int(math.Floor(overall))),
		ChartScore: chartScore,
		Breakdown:  factors,
		Confidence: confidence(factors, chart),
		ComputedAt: s.now().UTC(),
	}

	recs := Recommendations(score.Overall, genre.Genre, trends, t)
	recs = append(recs, chartRecommendations(factors, chart)...)

	return models.Analysis{
		TrackID:         trackID,
		Profile:         p,
		Score:           score,
		Genre:           genre,
		Trends:          trends,
		Social:          social,
		Chart:           chart,
		Recommendations: recs,
		Timeline:        Timeline(score.Overall),
	}, nil
}

// Score is Analyze without the intermediate results.
func (s *Scorer) Score(trackID string, p models.FeatureProfile) (models.PotentialScore, error) {
	a, err := s.Analyze(trackID, p)
	if err != nil {
		return models.PotentialScore{}, err
	}
	return a.Score, nil
}

func confidence(b models.Breakdown, c models.ChartComparison) int {
	vals := b.Values()
	sum := 0
	for _, v := range vals {
		sum += v
	}
	mean := float64(sum) / float64(len(vals))
	return clampScore(round((mean + c.SimilarityScore) / 2))
}

// Recommendations returns the A&R advice for an overall score, followed by
// genre and trend specific items.
func Recommendations(overall int, genre string, trends models.TrendAnalysis, t *Tables) []string {
	var out []string
	switch {
	case overall >= 85:
		out = append(out,
			"Exceptional hit potential: start major label outreach",
			"Prioritise radio submission to major markets",
			"Prepare a press kit and performance materials for A&R interest",
			"Pursue high-value sync opportunities",
		)
	case overall >= 75:
		out = append(out,
			"Strong commercial appeal: submit to major streaming playlists",
			"Target TV and film sync placements",
			"Create TikTok and Instagram content around the hook",
			"Look for collaborations with established artists",
		)
	case overall >= 65:
		out = append(out,
			"Solid foundation: focus on niche market penetration",
			"Target genre-specific playlists and communities",
			"Consider remixes to widen appeal",
			"Build a fanbase through consistent releases",
		)
	default:
		out = append(out,
			"Development focus: refine production and arrangement",
			"Consider vocal coaching or feature collaborations",
			"Strengthen hook development and melody work",
			"Study current chart trends for inspiration",
		)
	}
	if t != nil {
		out = append(out, t.GenreRecommendations[genre]...)
	}
	return append(out, trends.Recommendations...)
}

const (
	windowImmediate = "0-3 months"
	windowShort     = "3-6 months"
	windowMedium    = "6-12 months"
	windowLong      = "12+ months"
)

// Timeline estimates when each kind of success becomes likely.
func Timeline(overall int) models.SuccessTimeline {
	switch {
	case overall >= 85:
		return models.SuccessTimeline{
			ChartPotential:     windowImmediate,
			RadioPlay:          windowShort,
			MajorLabelInterest: windowImmediate,
			SyncPlacements:     windowShort,
		}
	case overall >= 70:
		return models.SuccessTimeline{
			ChartPotential:     windowShort,
			RadioPlay:          windowMedium,
			MajorLabelInterest: windowShort,
			SyncPlacements:     windowImmediate,
		}
	default:
		return models.SuccessTimeline{
			ChartPotential:     windowLong,
			RadioPlay:          windowLong,
			MajorLabelInterest: windowMedium,
			SyncPlacements:     windowShort,
		}
	}
}

// IsConfigError reports whether err means the market tables are unusable.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrEmptyMarketTable)
}
