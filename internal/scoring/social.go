package scoring

import (
	"sort"

	"github.com/david/syncscout/internal/models"
)

// PlatformThreshold is the minimum sub-score for a platform to be recommended.
const PlatformThreshold = 70

// EstimateSocial scores the profile for short-form and social platforms.
func EstimateSocial(p models.FeatureProfile, q QualitySignal) models.SocialPotential {
	tiktok := 0.0
	switch {
	case between(p.Tempo, 120, 140):
		tiktok += 30
	case between(p.Tempo, 100, 160):
		tiktok += 20
	}
	tiktok += p.Energy*25 + p.Danceability*30 + 15*measure(q, p, FactorShortFormCatchiness)

	instagram := 0.0
	if between(p.Tempo, 90, 150) {
		instagram += 25
	}
	instagram += p.Valence*30 + p.Energy*20 + 25*measure(q, p, FactorAesthetic)

	hook := p.Danceability*20 + p.Energy*15 + p.Valence*15 + 50*measure(q, p, FactorHookMemorability)
	share := p.Valence*30 + p.Energy*25 + p.Danceability*25 + 20*measure(q, p, FactorShareability)

	sp := models.SocialPotential{
		TikTok:       capScore(tiktok),
		Instagram:    capScore(instagram),
		ViralHook:    capScore(hook),
		Danceability: capScore(p.Danceability * 100),
		Shareability: capScore(share),
	}
	sp.Overall = clampScore(round(
		float64(sp.TikTok)*0.3 +
			float64(sp.Instagram)*0.2 +
			float64(sp.ViralHook)*0.3 +
			float64(sp.Danceability)*0.1 +
			float64(sp.Shareability)*0.1))
	sp.Platforms = recommendPlatforms(sp)
	return sp
}

func recommendPlatforms(sp models.SocialPotential) []models.PlatformRecommendation {
	candidates := []models.PlatformRecommendation{
		{Platform: "TikTok", Score: sp.TikTok, Recommendation: "Create dance challenges and hook-focused content"},
		{Platform: "Instagram", Score: sp.Instagram, Recommendation: "Focus on Reels and Stories with visual appeal"},
		{Platform: "YouTube Shorts", Score: sp.ViralHook, Recommendation: "Create short-form content highlighting the hook"},
		{Platform: "Twitter/X", Score: sp.Shareability, Recommendation: "Share snippets and behind-the-scenes content"},
	}

	out := make([]models.PlatformRecommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= PlatformThreshold {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
