package scoring

import (
	"github.com/david/syncscout/internal/models"
)

// ProfileInput is a FeatureProfile as it arrives from a caller. Pointer
// fields let a missing value be told apart from a zero.
type ProfileInput struct {
	Tempo            *float64 `json:"tempo" validate:"required,gt=0"`
	Energy           *float64 `json:"energy" validate:"required,gte=0,lte=1"`
	Danceability     *float64 `json:"danceability" validate:"required,gte=0,lte=1"`
	Valence          *float64 `json:"valence" validate:"required,gte=0,lte=1"`
	Acousticness     *float64 `json:"acousticness" validate:"required,gte=0,lte=1"`
	Instrumentalness *float64 `json:"instrumentalness" validate:"required,gte=0,lte=1"`
	Speechiness      *float64 `json:"speechiness" validate:"required,gte=0,lte=1"`
	Liveness         *float64 `json:"liveness" validate:"required,gte=0,lte=1"`
	Key              *int     `json:"key" validate:"required,gte=0,lte=11"`
	Mode             *int     `json:"mode" validate:"required,oneof=0 1"`
	Loudness         *float64 `json:"loudness" validate:"required"`
	Duration         *float64 `json:"duration" validate:"required,gt=0"`
}

// Profile validates in and converts it. Missing and out-of-range fields are
// reported together as a ProfileError.
func (in ProfileInput) Profile() (models.FeatureProfile, error) {
	if err := validateStruct(in); err != nil {
		return models.FeatureProfile{}, err
	}
	return models.FeatureProfile{
		Tempo:            *in.Tempo,
		Energy:           *in.Energy,
		Danceability:     *in.Danceability,
		Valence:          *in.Valence,
		Acousticness:     *in.Acousticness,
		Instrumentalness: *in.Instrumentalness,
		Speechiness:      *in.Speechiness,
		Liveness:         *in.Liveness,
		Key:              *in.Key,
		Mode:             models.Mode(*in.Mode),
		Loudness:         *in.Loudness,
		Duration:         *in.Duration,
	}, nil
}
