package scoring

import (
	"math"

	"github.com/david/syncscout/internal/models"
)

// HitFactors computes the seven chart sub-factors for a profile.
func HitFactors(p models.FeatureProfile, q QualitySignal) models.Breakdown {
	return models.Breakdown{
		HookStrength:      hookStrength(p, q),
		ProductionQuality: productionQuality(p),
		CommercialAppeal:  commercialAppeal(p),
		RadioFriendly:     radioFriendly(p),
		ViralPotential:    viralPotential(p, q),
		CrossoverAppeal:   crossoverAppeal(p),
		TrendAlignment:    trendAlignment(p),
	}
}

func hookStrength(p models.FeatureProfile, q QualitySignal) int {
	s := 0.0
	switch {
	case between(p.Tempo, 120, 140):
		s += 25
	case between(p.Tempo, 100, 160):
		s += 15
	}
	s += p.Energy*20 + p.Danceability*15 + p.Valence*10
	s += 30 * measure(q, p, FactorRepetition)
	return capScore(s)
}

func productionQuality(p models.FeatureProfile) int {
	s := 60.0
	switch {
	case p.Loudness >= -6:
		s += 20
	case p.Loudness >= -12:
		s += 10
	}
	s += p.Energy * 15
	if p.Speechiness < 0.33 {
		s += 15
	}
	if between(p.Instrumentalness, 0.1, 0.5) {
		s += 10
	}
	return capScore(s)
}

func commercialAppeal(p models.FeatureProfile) int {
	s := p.Danceability*25 + p.Energy*20 + p.Valence*20
	if between(p.Tempo, 100, 140) {
		s += 20
	}
	if between(p.Acousticness, 0.1, 0.6) {
		s += 15
	}
	return capScore(s)
}

func radioFriendly(p models.FeatureProfile) int {
	s := 0.0
	switch {
	case between(p.Duration, 180, 240):
		s += 25
	case between(p.Duration, 150, 270):
		s += 15
	}
	if between(p.Energy, 0.4, 0.8) {
		s += 20
	}
	s += p.Valence*15 + p.Danceability*15
	if p.Speechiness < 0.33 {
		s += 15
	}
	if between(p.Loudness, -8, -4) {
		s += 10
	}
	return capScore(s)
}

func viralPotential(p models.FeatureProfile, q QualitySignal) int {
	s := p.Danceability*30 + p.Energy*25
	if between(p.Tempo, 120, 140) {
		s += 20
	}
	s += p.Valence * 15
	s += 10 * measure(q, p, FactorCatchiness)
	return capScore(s)
}

func crossoverAppeal(p models.FeatureProfile) int {
	s := 50.0
	avg := (p.Danceability + p.Energy + p.Valence + p.Acousticness) / 4
	if between(avg, 0.4, 0.7) {
		s += 30
	}
	if between(p.Tempo, 100, 130) {
		s += 20
	}
	return capScore(s)
}

func trendAlignment(p models.FeatureProfile) int {
	s := 0
	for _, ok := range []bool{
		between(p.Tempo, 120, 140),
		p.Valence > 0.5,
		p.Danceability > 0.6,
		p.Energy > 0.6,
	} {
		if ok {
			s += 25
		}
	}
	return min(s, 100)
}

type chartTrend struct {
	name   string
	weight float64
	match  func(models.FeatureProfile) bool
}

var chartTrends = []chartTrend{
	{"Short-form content optimization", 0.3, func(p models.FeatureProfile) bool { return between(p.Tempo, 120, 140) }},
	{"Melodic hooks dominating", 0.25, func(p models.FeatureProfile) bool { return p.Valence > 0.5 && p.Danceability > 0.6 }},
	{"High-energy content", 0.2, func(p models.FeatureProfile) bool { return p.Energy > 0.6 }},
	{"Cross-genre appeal", 0.15, func(p models.FeatureProfile) bool { return p.Acousticness > 0.1 && p.Acousticness < 0.7 }},
	{"Social media virality", 0.1, func(p models.FeatureProfile) bool { return p.Danceability > 0.7 }},
}

// CompareToCharts measures the profile against the reference hits and the
// current chart trends.
func CompareToCharts(p models.FeatureProfile, t *Tables, q QualitySignal) models.ChartComparison {
	out := models.ChartComparison{Matches: []models.ChartMatch{}, AlignedTrends: []string{}}

	var hits []ReferenceHit
	if t != nil {
		hits = t.ReferenceHits
	}
	total := 0.0
	for _, h := range hits {
		sim := math.Min(60+math.Floor(40*measure(q, p, FactorChartSimilarity)), 100)
		total += sim
		if sim >= 70 && len(out.Matches) < 3 {
			out.Matches = append(out.Matches, models.ChartMatch{
				Title:      h.Title,
				Artist:     h.Artist,
				Position:   h.Position,
				Similarity: sim,
			})
		}
	}
	if len(hits) > 0 {
		out.SimilarityScore = total / float64(len(hits))
	}
	out.Compatibility = chartCompatibility(out.SimilarityScore)

	compat := 0.0
	for _, ct := range chartTrends {
		if ct.match(p) {
			compat += ct.weight * 100
			out.AlignedTrends = append(out.AlignedTrends, ct.name)
		}
	}
	out.TrendCompatibility = round(compat)
	out.TrendAssessment = trendAssessment(out.TrendCompatibility)
	return out
}

func chartCompatibility(score float64) string {
	switch {
	case score >= 80:
		return "Excellent chart compatibility"
	case score >= 70:
		return "Strong chart compatibility"
	case score >= 60:
		return "Good chart compatibility"
	default:
		return "Moderate chart compatibility"
	}
}

func trendAssessment(score int) string {
	switch {
	case score >= 80:
		return "Highly trend-aligned"
	case score >= 60:
		return "Well trend-aligned"
	case score >= 40:
		return "Moderately trend-aligned"
	default:
		return "Limited trend alignment"
	}
}

var chartWeights = [7]float64{0.20, 0.15, 0.15, 0.15, 0.15, 0.10, 0.10}

// ChartScore combines the hit factors with the two chart bonus terms.
func ChartScore(b models.Breakdown, c models.ChartComparison) int {
	s := 0.0
	for i, v := range b.Values() {
		s += float64(v) * chartWeights[i]
	}
	s += c.SimilarityScore * 0.1
	s += float64(c.TrendCompatibility) * 0.1
	return clampScore(round(s))
}

// chartRecommendations flags the weak factors.
func chartRecommendations(b models.Breakdown, c models.ChartComparison) []string {
	var out []string
	if b.HookStrength < 70 {
		out = append(out, "Strengthen hook memorability with repetitive, catchy elements")
	}
	if b.ProductionQuality < 70 {
		out = append(out, "Enhance production quality with professional mixing and mastering")
	}
	if b.CommercialAppeal < 70 {
		out = append(out, "Increase commercial appeal by studying current chart trends")
	}
	if b.RadioFriendly < 70 {
		out = append(out, "Optimize for radio play by adjusting length and energy levels")
	}
	if b.ViralPotential < 70 {
		out = append(out, "Boost viral potential with more danceable, energetic moments")
	}
	if c.SimilarityScore < 60 {
		out = append(out, "Study current chart hits and align with successful patterns")
	}
	return out
}
