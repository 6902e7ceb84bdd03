package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/david/syncscout/internal/models"
)

var (
	ErrNotFound          = errors.New("opportunity not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CanTransition reports whether an opportunity may move from one status to
// another. Statuses only move forward.
func CanTransition(from, to models.Status) bool {
	switch from {
	case models.StatusAvailable:
		return to == models.StatusSubmitted || to == models.StatusExpired
	case models.StatusSubmitted:
		return to == models.StatusAccepted || to == models.StatusRejected || to == models.StatusExpired
	case models.StatusAccepted, models.StatusRejected, models.StatusExpired:
		return false
	}
	return false
}

type StatusDecision struct {
	Status models.Status
	Reason string
}

// ComputeStatusDecision derives the effective status of an opportunity at now.
func ComputeStatusDecision(opp models.Opportunity, now time.Time) StatusDecision {
	now = now.UTC()

	if opp.Status == models.StatusExpired {
		return StatusDecision{Status: models.StatusExpired, Reason: "already_expired"}
	}
	if opp.Deadline.IsZero() {
		return StatusDecision{Status: opp.Status, Reason: "missing_deadline"}
	}
	if opp.Expired(now) {
		return StatusDecision{Status: models.StatusExpired, Reason: "deadline_passed"}
	}
	if opp.Status == "" {
		return StatusDecision{Status: models.StatusAvailable, Reason: "defaulted"}
	}
	return StatusDecision{Status: opp.Status, Reason: "future_deadline"}
}

// applyTransition returns a copy of opp moved to status.
func applyTransition(opp models.Opportunity, to models.Status, at time.Time) (models.Opportunity, error) {
	if !CanTransition(opp.Status, to) {
		return opp, fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, opp.Status, to, opp.ID)
	}
	opp.Status = to
	if to == models.StatusSubmitted {
		t := at.UTC()
		opp.SubmittedAt = &t
	}
	return opp, nil
}
