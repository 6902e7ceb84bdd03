package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the placement type an opportunity offers.
type Category string

const (
	CategoryBroadcast  Category = "broadcast"
	CategoryCommercial Category = "commercial"
	CategoryFilm       Category = "film"
	CategoryGame       Category = "game"
	CategorySocial     Category = "social"
	CategoryOther      Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBroadcast,
	CategoryCommercial,
	CategoryFilm,
	CategoryGame,
	CategorySocial,
	CategoryOther,
}

// ParseCategory maps a free-form label onto the closed category set.
// Unknown labels are rejected rather than silently mapped to other.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "broadcast", "tv", "television", "radio", "streaming_series":
		return CategoryBroadcast, nil
	case "commercial", "ad", "advertising", "brand":
		return CategoryCommercial, nil
	case "film", "movie", "trailer":
		return CategoryFilm, nil
	case "game", "video_game", "gaming":
		return CategoryGame, nil
	case "social", "short_form", "creator":
		return CategorySocial, nil
	case "other":
		return CategoryOther, nil
	}
	return "", fmt.Errorf("unknown opportunity category %q", raw)
}

// Status is the lifecycle state of an opportunity.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSubmitted Status = "submitted"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the inclusive bounds.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Distance is the distance from v to the nearest bound. It is only
// meaningful when v lies outside the range.
func (r Range) Distance(v float64) float64 {
	lo := v - r.Min
	if lo < 0 {
		lo = -lo
	}
	hi := v - r.Max
	if hi < 0 {
		hi = -hi
	}
	if lo < hi {
		return lo
	}
	return hi
}

// Requirements are the acoustic ranges a placement asks for. Nil means unspecified.
type Requirements struct {
	Tempo        *Range `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Energy       *Range `json:"energy,omitempty" yaml:"energy,omitempty"`
	Danceability *Range `json:"danceability,omitempty" yaml:"danceability,omitempty"`
	Valence      *Range `json:"valence,omitempty" yaml:"valence,omitempty"`
}

// IsZero reports whether no range is specified.
func (r Requirements) IsZero() bool {
	return r.Tempo == nil && r.Energy == nil && r.Danceability == nil && r.Valence == nil
}

type Opportunity struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Category     Category     `json:"category"`
	Source       string       `json:"source"` // network, brand or developer
	Description  string       `json:"description"`
	Genres       []string     `json:"genres"`
	Moods        []string     `json:"moods"`
	Budget       string       `json:"budget"` // e.g. "$15,000 - $25,000"
	Requirements Requirements `json:"requirements"`
	Deadline     time.Time    `json:"deadline"`
	Status       Status       `json:"status"`
	Priority     string       `json:"priority"`
	Contact      string       `json:"contact"`
	Usage        string       `json:"usage"`
	Exclusivity  string       `json:"exclusivity"`
	Territories  []string     `json:"territories"`
	Duration     string       `json:"duration"`
	SubmittedAt  *time.Time   `json:"submitted_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Expired reports whether the deadline is strictly before now. An
// opportunity without a deadline never expires.
func (o Opportunity) Expired(now time.Time) bool {
	return !o.Deadline.IsZero() && o.Deadline.Before(now)
}
