package matching

import (
	"math"
	"testing"
	"time"

	"github.com/david/syncscout/internal/models"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func analysisFixture() models.Analysis {
	return models.Analysis{
		TrackID: "track-1",
		Profile: models.FeatureProfile{Tempo: 160, Energy: 0.75, Danceability: 0.85, Valence: 0.6, Duration: 200},
		Score:   models.PotentialScore{Overall: 80},
		Genre:   models.GenreProfile{Genre: "Hip-Hop/Rap"},
		Social:  models.SocialPotential{Overall: 59},
	}
}

func available(id string, cat models.Category, genres ...string) models.Opportunity {
	return models.Opportunity{
		ID:       id,
		Category: cat,
		Genres:   genres,
		Status:   models.StatusAvailable,
		Deadline: now.Add(7 * 24 * time.Hour),
	}
}

func TestEngine_Match(t *testing.T) {
	commercial := available("C", models.CategoryCommercial, "pop")
	commercial.Budget = "$30,000 - $50,000"
	commercial.Requirements = models.Requirements{
		Tempo:  &models.Range{Min: 100, Max: 130},
		Energy: &models.Range{Min: 0.5, Max: 0.8},
	}
	expired := available("D", models.CategoryGame, "hip-hop")
	expired.Deadline = now.Add(-time.Minute)
	submitted := available("E", models.CategoryGame, "hip-hop")
	submitted.Status = models.StatusSubmitted

	opps := []models.Opportunity{
		available("B", models.CategoryGame, "jazz"),
		commercial,
		available("A", models.CategoryGame, "hip-hop"),
		expired,
		submitted,
		available("F", models.CategoryGame, "Hip-Hop"),
	}

	got := NewEngine(DefaultCompatibility()).Match(analysisFixture(), opps, now)

	wantIDs := []string{"A", "F", "C"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d matches, got %d: %+v", len(wantIDs), len(got), got)
	}
	for i, id := range wantIDs {
		if got[i].OpportunityID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].OpportunityID)
		}
	}

	if got[0].MatchScore != 83 {
		t.Fatalf("expected A to score 83, got %d", got[0].MatchScore)
	}
	if got[0].SuccessProbability != 95 {
		t.Fatalf("expected A success probability clamped to 95, got %d", got[0].SuccessProbability)
	}
	if got[0].Competition != models.CompetitionLow {
		t.Fatalf("expected low competition for fallback budget, got %s", got[0].Competition)
	}
	if len(got[0].Reasons) != 3 {
		t.Fatalf("expected 3 reasons, got %v", got[0].Reasons)
	}

	c := got[2]
	if c.MatchScore != 78 {
		t.Fatalf("expected C to score 78, got %d", c.MatchScore)
	}
	if c.Competition != models.CompetitionHigh {
		t.Fatalf("expected high competition, got %s", c.Competition)
	}
	if c.SuccessProbability != 73 {
		t.Fatalf("expected C success probability 73, got %d", c.SuccessProbability)
	}
	if c.EstimatedRevenue != (models.Revenue{Min: 30000, Max: 50000, Average: 40000}) {
		t.Fatalf("unexpected revenue %+v", c.EstimatedRevenue)
	}

	for i := 1; i < len(got); i++ {
		if got[i].MatchScore > got[i-1].MatchScore {
			t.Fatalf("matches not sorted: %d before %d", got[i-1].MatchScore, got[i].MatchScore)
		}
	}
	for _, m := range got {
		if m.MatchScore < MinScore {
			t.Fatalf("match below threshold: %+v", m)
		}
		if m.Opportunity.Expired(now) {
			t.Fatalf("expired opportunity returned: %s", m.OpportunityID)
		}
	}
}

func TestEngine_EmptyCatalog(t *testing.T) {
	got := NewEngine(DefaultCompatibility()).Match(analysisFixture(), nil, now)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestFeatureMatch(t *testing.T) {
	tempo := &models.Range{Min: 100, Max: 130}
	tests := []struct {
		name string
		p    models.FeatureProfile
		req  models.Requirements
		want float64
	}{
		{"tempo in range", models.FeatureProfile{Tempo: 120}, models.Requirements{Tempo: tempo}, 100},
		{"tempo 20 away", models.FeatureProfile{Tempo: 150}, models.Requirements{Tempo: tempo}, 70},
		{"tempo 30 away", models.FeatureProfile{Tempo: 160}, models.Requirements{Tempo: tempo}, 40},
		{"tempo 30 below", models.FeatureProfile{Tempo: 70}, models.Requirements{Tempo: tempo}, 40},
		{"tempo 41 away", models.FeatureProfile{Tempo: 171}, models.Requirements{Tempo: tempo}, 0},
		{"energy miss averages", models.FeatureProfile{Tempo: 120, Energy: 0.2},
			models.Requirements{Tempo: tempo, Energy: &models.Range{Min: 0.5, Max: 1}}, 50},
		{"danceability counted", models.FeatureProfile{Danceability: 0.9},
			models.Requirements{Danceability: &models.Range{Min: 0.6, Max: 1}}, 100},
		{"valence only has no checks", models.FeatureProfile{Valence: 0.1},
			models.Requirements{Valence: &models.Range{Min: 0.6, Max: 1}}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := featureMatch(tt.p, tt.req); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPotentialImpact(t *testing.T) {
	tests := []struct {
		cat     models.Category
		overall int
		want    float64
	}{
		{models.CategoryCommercial, 50, 60},
		{models.CategoryCommercial, 90, 100},
		{models.CategoryBroadcast, 50, 55},
		{models.CategoryFilm, 50, 55},
		{models.CategoryGame, 50, 50},
		{models.CategorySocial, 50, 65},
		{models.CategoryOther, 50, 50},
	}
	for _, tt := range tests {
		if got := potentialImpact(tt.overall, tt.cat); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("%s/%d: expected %v, got %v", tt.cat, tt.overall, tt.want, got)
		}
	}
}

func TestSuccessProbabilityBounds(t *testing.T) {
	if got := successProbability(100, 90, models.CompetitionLow); got != 95 {
		t.Fatalf("expected 95, got %d", got)
	}
	if got := successProbability(20, 0, models.CompetitionVeryHigh); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := successProbability(70, 76, models.CompetitionMedium); got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
}

func TestCompatibility(t *testing.T) {
	c := DefaultCompatibility()
	tests := []struct {
		a, b string
		want bool
	}{
		{"hip-hop", "urban", true},
		{"urban", "hip-hop", true},
		{"Ambient", "electronic", true},
		{"alternative", "rock", true},
		{"jazz", "pop", false},
		{"rap", "electronic", false},
	}
	for _, tt := range tests {
		if got := c.Compatible(tt.a, tt.b); got != tt.want {
			t.Fatalf("%s/%s: expected %v, got %v", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestGenreScore(t *testing.T) {
	e := NewEngine(DefaultCompatibility())
	tests := []struct {
		track string
		opp   []string
		want  float64
	}{
		{"Hip-Hop/Rap", []string{"hip-hop"}, 100},
		{"Electronic/Dance", []string{"dance", "pop"}, 100},
		{"Hip-Hop/Rap", []string{"urban"}, 75},
		{"Rock/Alternative", []string{"jazz"}, 0},
		{"", []string{"pop"}, 0},
	}
	for _, tt := range tests {
		if got := e.genreScore(tt.track, tt.opp); got != tt.want {
			t.Fatalf("%s vs %v: expected %v, got %v", tt.track, tt.opp, tt.want, got)
		}
	}
}
