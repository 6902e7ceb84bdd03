package service

import (
	"math"

	"github.com/david/syncscout/internal/models"
)

// NextSteps lists what happens after a batch of submissions.
func NextSteps(results []models.SubmissionResult) []string {
	steps := []string{
		"Confirmation emails sent to music supervisors",
		"Response tracking initiated for all submissions",
		"Performance analytics will be available in 24-48 hours",
	}

	var commercial, social bool
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		switch r.Category {
		case models.CategoryCommercial:
			commercial = true
		case models.CategorySocial:
			social = true
		case models.CategoryBroadcast, models.CategoryFilm, models.CategoryGame, models.CategoryOther:
		}
	}
	if commercial {
		steps = append(steps, "Prepare additional commercial materials if requested")
	}
	if social {
		steps = append(steps, "Monitor social media for potential viral pickup")
	}
	return append(steps, "Automated follow-ups scheduled based on response timelines")
}

func roundInt(x float64) int {
	return int(math.Floor(x + 0.5))
}
