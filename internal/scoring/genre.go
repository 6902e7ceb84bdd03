package scoring

import (
	"math"

	"github.com/david/syncscout/internal/models"
)

// ClassifyGenre picks the genre whose market entry fits the profile best.
// Ties go to the entry that appears first in the table.
func ClassifyGenre(p models.FeatureProfile, t *Tables) (models.GenreProfile, error) {
	if t == nil || len(t.Genres) == 0 {
		return models.GenreProfile{}, ErrEmptyMarketTable
	}

	best := 0
	bestScore := genreScore(p, t.Genres[0])
	for i := 1; i < len(t.Genres); i++ {
		if s := genreScore(p, t.Genres[i]); s > bestScore {
			best, bestScore = i, s
		}
	}

	g := t.Genres[best]
	return models.GenreProfile{
		Genre:          g.Name,
		Confidence:     math.Min(bestScore/100, 1),
		Popularity:     g.Popularity,
		Growth:         g.Growth,
		AvgStreams:     g.AvgStreams,
		MarketPosition: marketPosition(g.Popularity),
	}, nil
}

func genreScore(p models.FeatureProfile, g GenreEntry) float64 {
	score := 0.0
	if g.Tempo.Contains(p.Tempo) {
		score += 30
	}
	if g.Energy.Contains(p.Energy) {
		score += 25
	}
	if g.Danceability.Contains(p.Danceability) {
		score += 25
	}
	score += g.Popularity * 0.5
	if g.Growth > 0 {
		score += g.Growth * 0.3
	}
	return score
}

func marketPosition(popularity float64) string {
	switch {
	case popularity > 20:
		return "Major Market"
	case popularity > 10:
		return "Strong Market"
	case popularity > 5:
		return "Niche Market"
	default:
		return "Emerging Market"
	}
}
