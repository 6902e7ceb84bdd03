package scoring

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/david/syncscout/internal/models"
)

type fixedSignal float64

func (f fixedSignal) Measure(models.FeatureProfile, Factor) float64 { return float64(f) }

func testProfile() models.FeatureProfile {
	return models.FeatureProfile{
		Tempo:            128,
		Energy:           0.75,
		Danceability:     0.85,
		Valence:          0.6,
		Acousticness:     0.2,
		Instrumentalness: 0,
		Speechiness:      0.05,
		Liveness:         0.1,
		Key:              5,
		Mode:             models.ModeMajor,
		Loudness:         -5,
		Duration:         200,
	}
}

func defaultTables(t *testing.T) *Tables {
	t.Helper()
	tables, err := DefaultTables()
	if err != nil {
		t.Fatalf("default tables: %v", err)
	}
	return tables
}

func genreByName(t *testing.T, tables *Tables, name string) GenreEntry {
	t.Helper()
	for _, g := range tables.Genres {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("genre %q missing from default tables", name)
	return GenreEntry{}
}

func TestClassifyGenre_ElectronicDanceScenario(t *testing.T) {
	full := defaultTables(t)
	tables := &Tables{Genres: []GenreEntry{
		genreByName(t, full, "R&B/Soul"),
		genreByName(t, full, "Electronic/Dance"),
		genreByName(t, full, "Rock/Alternative"),
	}}
	p := models.FeatureProfile{Tempo: 128, Energy: 0.75, Danceability: 0.85, Valence: 0.6, Duration: 200}

	got, err := ClassifyGenre(p, tables)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Genre != "Electronic/Dance" {
		t.Fatalf("expected Electronic/Dance, got %s", got.Genre)
	}
	if got.MarketPosition != "Strong Market" {
		t.Fatalf("expected Strong Market, got %s", got.MarketPosition)
	}
}

func TestClassifyGenre_DefaultTable(t *testing.T) {
	got, err := ClassifyGenre(testProfile(), defaultTables(t))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	// Hip-Hop/Rap's ranges also contain the profile and it carries more market weight.
	if got.Genre != "Hip-Hop/Rap" {
		t.Fatalf("expected Hip-Hop/Rap, got %s", got.Genre)
	}
	if math.Abs(got.Confidence-0.9794) > 1e-9 {
		t.Fatalf("expected confidence 0.9794, got %f", got.Confidence)
	}
	if got.MarketPosition != "Major Market" {
		t.Fatalf("expected Major Market, got %s", got.MarketPosition)
	}
}

func TestClassifyGenre_TieGoesToFirstEntry(t *testing.T) {
	entry := GenreEntry{
		Popularity:   10,
		Tempo:        models.Range{Min: 100, Max: 140},
		Energy:       models.Range{Min: 0, Max: 1},
		Danceability: models.Range{Min: 0, Max: 1},
	}
	a, b := entry, entry
	a.Name, b.Name = "First", "Second"

	for i := 0; i < 10; i++ {
		got, err := ClassifyGenre(testProfile(), &Tables{Genres: []GenreEntry{a, b}})
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if got.Genre != "First" {
			t.Fatalf("expected First on tie, got %s", got.Genre)
		}
	}
}

func TestClassifyGenre_EmptyTable(t *testing.T) {
	_, err := ClassifyGenre(testProfile(), &Tables{})
	if !errors.Is(err, ErrEmptyMarketTable) {
		t.Fatalf("expected ErrEmptyMarketTable, got %v", err)
	}
}

func TestAlignTrends(t *testing.T) {
	tables := defaultTables(t)

	tests := []struct {
		name        string
		genre       string
		wantTrends  int
		wantScore   float64
		opportunity string
	}{
		{"pop gets melodic hooks", "Pop", 4, 24, "High Opportunity"},
		{"latin gets crossover trend", "Latin", 4, 22.575, "High Opportunity"},
		{"unlisted genre uses defaults", "Rock/Alternative", 3, 69.4 / 3, "High Opportunity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignTrends(tt.genre, tables)
			if len(got.Trends) != tt.wantTrends {
				t.Fatalf("expected %d trends, got %d (%v)", tt.wantTrends, len(got.Trends), got.Trends)
			}
			if math.Abs(got.TrendScore-tt.wantScore) > 1e-9 {
				t.Fatalf("expected trend score %f, got %f", tt.wantScore, got.TrendScore)
			}
			if got.MarketOpportunity != tt.opportunity {
				t.Fatalf("expected %s, got %s", tt.opportunity, got.MarketOpportunity)
			}
		})
	}
}

func TestAlignTrends_NoRelevantTrends(t *testing.T) {
	tables := &Tables{Trends: []TrendEntry{
		{Name: "weak", Impact: 90, Active: true, Relevance: 0.6},
		{Name: "inactive", Impact: 90, Active: false, Relevance: 0.9},
	}}
	got := AlignTrends("Pop", tables)
	if got.TrendScore != 0 {
		t.Fatalf("expected 0 trend score, got %f", got.TrendScore)
	}
	if got.MarketOpportunity != "Limited Opportunity" {
		t.Fatalf("expected Limited Opportunity, got %s", got.MarketOpportunity)
	}
}

func TestEstimateSocial_Deterministic(t *testing.T) {
	got := EstimateSocial(testProfile(), NoSignal{})

	want := models.SocialPotential{TikTok: 74, Instagram: 58, ViralHook: 37, Danceability: 85, Shareability: 58, Overall: 59}
	if got.TikTok != want.TikTok || got.Instagram != want.Instagram || got.ViralHook != want.ViralHook ||
		got.Danceability != want.Danceability || got.Shareability != want.Shareability || got.Overall != want.Overall {
		t.Fatalf("unexpected social potential: %+v", got)
	}
	if len(got.Platforms) != 1 || got.Platforms[0].Platform != "TikTok" {
		t.Fatalf("expected only TikTok, got %+v", got.Platforms)
	}
}

func TestEstimateSocial_PlatformsSortedByScore(t *testing.T) {
	got := EstimateSocial(testProfile(), fixedSignal(1))

	want := []string{"TikTok", "YouTube Shorts", "Instagram", "Twitter/X"}
	if len(got.Platforms) != len(want) {
		t.Fatalf("expected %d platforms, got %+v", len(want), got.Platforms)
	}
	for i, name := range want {
		if got.Platforms[i].Platform != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got.Platforms[i].Platform)
		}
		if got.Platforms[i].Score < PlatformThreshold {
			t.Fatalf("%s below threshold: %d", name, got.Platforms[i].Score)
		}
	}
}

func TestHitFactors(t *testing.T) {
	got := HitFactors(testProfile(), NoSignal{})
	want := models.Breakdown{
		HookStrength:      59,
		ProductionQuality: 100,
		CommercialAppeal:  83,
		RadioFriendly:     92,
		ViralPotential:    73,
		CrossoverAppeal:   100,
		TrendAlignment:    100,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestCompareToCharts(t *testing.T) {
	tables := defaultTables(t)

	plain := CompareToCharts(testProfile(), tables, NoSignal{})
	if plain.SimilarityScore != 60 {
		t.Fatalf("expected similarity 60, got %f", plain.SimilarityScore)
	}
	if len(plain.Matches) != 0 {
		t.Fatalf("expected no matches under 70, got %+v", plain.Matches)
	}
	if plain.TrendCompatibility != 100 {
		t.Fatalf("expected trend compatibility 100, got %d", plain.TrendCompatibility)
	}

	strong := CompareToCharts(testProfile(), tables, fixedSignal(1))
	if strong.SimilarityScore != 100 {
		t.Fatalf("expected similarity 100, got %f", strong.SimilarityScore)
	}
	if len(strong.Matches) != 3 {
		t.Fatalf("expected matches capped at 3, got %d", len(strong.Matches))
	}
	if strong.Compatibility != "Excellent chart compatibility" {
		t.Fatalf("unexpected compatibility %q", strong.Compatibility)
	}
}

func TestScorer_Analyze(t *testing.T) {
	s := NewScorer(StaticTables(defaultTables(t)))

	a, err := s.Analyze("track-1", testProfile())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Score.ChartScore != 100 {
		t.Fatalf("expected chart score 100, got %d", a.Score.ChartScore)
	}
	if a.Score.Overall != 99 {
		t.Fatalf("expected overall 99, got %d", a.Score.Overall)
	}
	if a.Score.Confidence != 73 {
		t.Fatalf("expected confidence 73, got %d", a.Score.Confidence)
	}
	if a.Genre.Genre != "Hip-Hop/Rap" {
		t.Fatalf("expected Hip-Hop/Rap, got %s", a.Genre.Genre)
	}
	if a.Timeline.ChartPotential != "0-3 months" {
		t.Fatalf("expected immediate chart potential, got %s", a.Timeline.ChartPotential)
	}
	if len(a.Recommendations) == 0 || a.Recommendations[0] != "Exceptional hit potential: start major label outreach" {
		t.Fatalf("unexpected recommendations: %v", a.Recommendations)
	}
	if a.Score.TrackID != "track-1" || a.TrackID != "track-1" {
		t.Fatalf("track id not carried through: %+v", a.Score)
	}
}

func TestScorer_Bounds(t *testing.T) {
	tables := StaticTables(defaultTables(t))
	signals := []QualitySignal{NoSignal{}, fixedSignal(1), NewRandomSignal(42)}

	units := []float64{0, 0.33, 0.5, 0.9, 1}
	tempos := []float64{1, 60, 100, 128, 160, 300}
	loudness := []float64{-60, -12, -6, 0, 5}
	durations := []float64{1, 180, 600}

	for _, q := range signals {
		s := NewScorer(tables, WithSignal(q))
		for _, tempo := range tempos {
			for _, u := range units {
				for _, l := range loudness {
					for _, d := range durations {
						p := models.FeatureProfile{
							Tempo: tempo, Energy: u, Danceability: u, Valence: 1 - u,
							Acousticness: u, Instrumentalness: 1 - u, Speechiness: u, Liveness: u,
							Key: 11, Mode: models.ModeMinor, Loudness: l, Duration: d,
						}
						score, err := s.Score("t", p)
						if err != nil {
							t.Fatalf("score %+v: %v", p, err)
						}
						if score.Overall < 0 || score.Overall > 100 {
							t.Fatalf("overall out of range: %d", score.Overall)
						}
						if score.ChartScore < 0 || score.ChartScore > 100 {
							t.Fatalf("chart score out of range: %d", score.ChartScore)
						}
						for _, v := range score.Breakdown.Values() {
							if v < 0 || v > 100 {
								t.Fatalf("factor out of range: %+v", score.Breakdown)
							}
						}
					}
				}
			}
		}
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.FeatureProfile)
		wantField string
	}{
		{"valid", func(*models.FeatureProfile) {}, ""},
		{"zero tempo", func(p *models.FeatureProfile) { p.Tempo = 0 }, "tempo"},
		{"energy above one", func(p *models.FeatureProfile) { p.Energy = 1.5 }, "energy"},
		{"negative danceability", func(p *models.FeatureProfile) { p.Danceability = -0.1 }, "danceability"},
		{"key out of range", func(p *models.FeatureProfile) { p.Key = 12 }, "key"},
		{"bad mode", func(p *models.FeatureProfile) { p.Mode = 2 }, "mode"},
		{"zero duration", func(p *models.FeatureProfile) { p.Duration = 0 }, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			tt.mutate(&p)
			err := ValidateProfile(p)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("expected ErrInvalidProfile, got %v", err)
			}
			var pe *ProfileError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProfileError, got %T", err)
			}
			if len(pe.Violations) != 1 || pe.Violations[0].Field != tt.wantField {
				t.Fatalf("expected violation on %s, got %+v", tt.wantField, pe.Violations)
			}
		})
	}
}

func TestScorer_RejectsInvalidProfile(t *testing.T) {
	s := NewScorer(StaticTables(defaultTables(t)))
	p := testProfile()
	p.Valence = 2

	if _, err := s.Analyze("bad", p); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestParseTables(t *testing.T) {
	if _, err := ParseTables([]byte("genres: []\n")); !errors.Is(err, ErrEmptyMarketTable) {
		t.Fatalf("expected ErrEmptyMarketTable, got %v", err)
	}

	inverted := []byte(`
genres:
  - name: Broken
    tempo: {min: 140, max: 100}
`)
	if _, err := ParseTables(inverted); err == nil {
		t.Fatal("expected error for inverted range")
	}

	tables := defaultTables(t)
	if len(tables.Genres) != 6 {
		t.Fatalf("expected 6 genres, got %d", len(tables.Genres))
	}
	if len(tables.ReferenceHits) != 5 {
		t.Fatalf("expected 5 reference hits, got %d", len(tables.ReferenceHits))
	}
}

func TestTableStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	good := []byte(`
genres:
  - name: Only
    popularity: 10
    tempo: {min: 90, max: 130}
    energy: {min: 0, max: 1}
    danceability: {min: 0, max: 1}
`)
	if err := os.WriteFile(path, good, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := NewTableStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := store.Current().Genres[0].Name; got != "Only" {
		t.Fatalf("expected Only, got %s", got)
	}

	if err := os.WriteFile(path, []byte("genres: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Reload(context.Background()); !errors.Is(err, ErrEmptyMarketTable) {
		t.Fatalf("expected ErrEmptyMarketTable, got %v", err)
	}
	if got := store.Current().Genres[0].Name; got != "Only" {
		t.Fatalf("previous tables should stay published, got %s", got)
	}
}
