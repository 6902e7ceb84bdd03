package models

import "time"

// Competition is a coarse tier derived from an opportunity's estimated budget.
type Competition string

const (
	CompetitionLow      Competition = "low"
	CompetitionMedium   Competition = "medium"
	CompetitionHigh     Competition = "high"
	CompetitionVeryHigh Competition = "very_high"
)

// Revenue is an estimated payout range in whole currency units.
type Revenue struct {
	Min     int64 `json:"min"`
	Max     int64 `json:"max"`
	Average int64 `json:"average"`
}

// Match pairs a track with one opportunity. Matches are derived on every
// request and never stored.
type Match struct {
	TrackID            string      `json:"track_id"`
	OpportunityID      string      `json:"opportunity_id"`
	Opportunity        Opportunity `json:"opportunity"`
	MatchScore         int         `json:"match_score"`
	Reasons            []string    `json:"reasons"`
	EstimatedRevenue   Revenue     `json:"estimated_revenue"`
	Competition        Competition `json:"competition"`
	SuccessProbability int         `json:"success_probability"`
}

// SubmissionResult is the outcome of submitting a track to one opportunity.
type SubmissionResult struct {
	ID               string     `json:"id,omitempty"`
	TrackID          string     `json:"track_id"`
	OpportunityID    string     `json:"opportunity_id"`
	OpportunityTitle string     `json:"opportunity_title,omitempty"`
	Category         Category   `json:"category,omitempty"`
	Status           Status     `json:"status"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// SubmissionStats summarises submission outcomes.
type SubmissionStats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Accepted       int `json:"accepted"`
	Rejected       int `json:"rejected"`
	AcceptanceRate int `json:"acceptance_rate"`
	AvgResponseDay int `json:"average_response_days"`
}

// Insights summarises the current catalog.
type Insights struct {
	Total            int              `json:"total_opportunities"`
	Available        int              `json:"available_opportunities"`
	ByCategory       map[Category]int `json:"category_distribution"`
	BudgetBands      map[string]int   `json:"budget_ranges"`
	UrgentCount      int              `json:"urgent_count"`
	HighValueCount   int              `json:"high_value_count"`
	LastRefreshAt    time.Time        `json:"last_refresh_at"`
	LastRefreshAdded int              `json:"last_refresh_added"`
}
