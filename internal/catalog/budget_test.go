package catalog

import (
	"testing"

	"github.com/david/syncscout/internal/models"
)

func TestParseBudget(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		want   models.Revenue
		wantOK bool
	}{
		{"range", "$15,000 - $25,000", models.Revenue{Min: 15000, Max: 25000, Average: 20000}, true},
		{"reversed range", "$25,000 - $15,000", models.Revenue{Min: 15000, Max: 25000, Average: 20000}, true},
		{"single amount", "$10,000", models.Revenue{Min: 10000, Max: 15000, Average: 12500}, true},
		{"thousands suffix", "$15k - $25k", models.Revenue{Min: 15000, Max: 25000, Average: 20000}, true},
		{"leading bare number", "Season 3 - $15,000 - $25,000", models.Revenue{Min: 15000, Max: 25000, Average: 20000}, true},
		{"count before amount", "2 spots: $8,000", models.Revenue{Min: 8000, Max: 12000, Average: 10000}, true},
		{"millions suffix", "$1.5M - $2M", models.Revenue{Min: 1500000, Max: 2000000, Average: 1750000}, true},
		{"space after sign", "$ 5,000", models.Revenue{Min: 5000, Max: 7500, Average: 6250}, true},
		{"bare numbers only", "15000 - 25000", FallbackRevenue, false},
		{"unparsable", "TBD", FallbackRevenue, false},
		{"empty", "", FallbackRevenue, false},
		{"punctuation only", "Negotiable.", FallbackRevenue, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBudget(tt.label)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestCompetitionFor(t *testing.T) {
	tests := []struct {
		avg  int64
		want models.Competition
	}{
		{50001, models.CompetitionVeryHigh},
		{50000, models.CompetitionHigh},
		{25001, models.CompetitionHigh},
		{25000, models.CompetitionMedium},
		{10001, models.CompetitionMedium},
		{10000, models.CompetitionLow},
		{0, models.CompetitionLow},
	}
	for _, tt := range tests {
		if got := CompetitionFor(models.Revenue{Average: tt.avg}); got != tt.want {
			t.Fatalf("average %d: expected %s, got %s", tt.avg, tt.want, got)
		}
	}
}

func TestCompetitionForLabel(t *testing.T) {
	rev := EstimateRevenue("Season 3 - $15,000 - $25,000")
	if got := CompetitionFor(rev); got != models.CompetitionMedium {
		t.Fatalf("expected medium competition for %+v, got %s", rev, got)
	}
}
