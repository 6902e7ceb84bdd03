package models

import "time"

// Mode is the musical mode of a track.
type Mode int

const (
	ModeMinor Mode = 0
	ModeMajor Mode = 1
)

// FeatureProfile is the acoustic description of one track. It is produced
// upstream and treated as an immutable value.
type FeatureProfile struct {
	Tempo            float64 `json:"tempo" validate:"gt=0"`
	Energy           float64 `json:"energy" validate:"gte=0,lte=1"`
	Danceability     float64 `json:"danceability" validate:"gte=0,lte=1"`
	Valence          float64 `json:"valence" validate:"gte=0,lte=1"`
	Acousticness     float64 `json:"acousticness" validate:"gte=0,lte=1"`
	Instrumentalness float64 `json:"instrumentalness" validate:"gte=0,lte=1"`
	Speechiness      float64 `json:"speechiness" validate:"gte=0,lte=1"`
	Liveness         float64 `json:"liveness" validate:"gte=0,lte=1"`
	Key              int     `json:"key" validate:"gte=0,lte=11"`
	Mode             Mode    `json:"mode" validate:"oneof=0 1"`
	Loudness         float64 `json:"loudness"`
	Duration         float64 `json:"duration" validate:"gt=0"`
}

// GenreProfile is the classifier's best-fit genre together with its market metrics.
type GenreProfile struct {
	Genre          string  `json:"genre"`
	Confidence     float64 `json:"confidence"`
	Popularity     float64 `json:"popularity"`
	Growth         float64 `json:"growth"`
	AvgStreams     int64   `json:"avg_streams"`
	MarketPosition string  `json:"market_position"`
}

// Breakdown holds the seven chart sub-factors, each in [0,100].
type Breakdown struct {
	HookStrength      int `json:"hook_strength"`
	ProductionQuality int `json:"production_quality"`
	CommercialAppeal  int `json:"commercial_appeal"`
	RadioFriendly     int `json:"radio_friendly"`
	ViralPotential    int `json:"viral_potential"`
	CrossoverAppeal   int `json:"crossover_appeal"`
	TrendAlignment    int `json:"trend_alignment"`
}

// Values returns the factors in weight order.
func (b Breakdown) Values() []int {
	return []int{
		b.HookStrength,
		b.ProductionQuality,
		b.CommercialAppeal,
		b.RadioFriendly,
		b.ViralPotential,
		b.CrossoverAppeal,
		b.TrendAlignment,
	}
}

// PotentialScore is the bounded commercial potential of a track. A new value
// is produced for every analysis; it is never mutated.
type PotentialScore struct {
	TrackID    string    `json:"track_id"`
	Overall    int       `json:"overall"`
	ChartScore int       `json:"chart_score"`
	Breakdown  Breakdown `json:"breakdown"`
	Confidence int       `json:"confidence"`
	Version    int       `json:"version"`
	ComputedAt time.Time `json:"computed_at"`
}

type PlatformRecommendation struct {
	Platform       string `json:"platform"`
	Score          int    `json:"score"`
	Recommendation string `json:"recommendation"`
}

// SocialPotential is the per-platform virality estimate.
type SocialPotential struct {
	TikTok       int                      `json:"tiktok"`
	Instagram    int                      `json:"instagram"`
	ViralHook    int                      `json:"viral_hook"`
	Danceability int                      `json:"danceability"`
	Shareability int                      `json:"shareability"`
	Overall      int                      `json:"overall"`
	Platforms    []PlatformRecommendation `json:"platforms"`
}

// TrendAnalysis is the result of aligning a genre against active market trends.
type TrendAnalysis struct {
	Trends            []string `json:"trends"`
	TrendScore        float64  `json:"trend_score"`
	MarketOpportunity string   `json:"market_opportunity"`
	Recommendations   []string `json:"recommendations"`
}

type ChartMatch struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Position   int     `json:"position"`
	Similarity float64 `json:"similarity"`
}

// ChartComparison compares a profile to the reference chart hits and chart trends.
type ChartComparison struct {
	SimilarityScore    float64      `json:"similarity_score"`
	Matches            []ChartMatch `json:"matches"`
	Compatibility      string       `json:"compatibility"`
	TrendCompatibility int          `json:"trend_compatibility"`
	AlignedTrends      []string     `json:"aligned_trends"`
	TrendAssessment    string       `json:"trend_assessment"`
}

// SuccessTimeline estimates when each kind of success is likely.
type SuccessTimeline struct {
	ChartPotential     string `json:"chart_potential"`
	RadioPlay          string `json:"radio_play"`
	MajorLabelInterest string `json:"major_label_interest"`
	SyncPlacements     string `json:"sync_placements"`
}

// Analysis is everything produced for one track by one scoring run.
type Analysis struct {
	TrackID         string          `json:"track_id"`
	Profile         FeatureProfile  `json:"profile"`
	Score           PotentialScore  `json:"score"`
	Genre           GenreProfile    `json:"genre"`
	Trends          TrendAnalysis   `json:"trends"`
	Social          SocialPotential `json:"social"`
	Chart           ChartComparison `json:"chart"`
	Recommendations []string        `json:"recommendations"`
	Timeline        SuccessTimeline `json:"timeline"`
}
