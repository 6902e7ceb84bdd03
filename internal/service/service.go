// Package service is the entry point used by the HTTP layer and the tools:
// it ties scoring, the analysis cache, the catalog and the matching engine
// together.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/david/syncscout/internal/cache"
	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/matching"
	"github.com/david/syncscout/internal/metrics"
	"github.com/david/syncscout/internal/models"
	"github.com/david/syncscout/internal/scoring"
)

var (
	// ErrNotAnalyzed is returned when matches are requested for a track that
	// was never analyzed successfully.
	ErrNotAnalyzed    = errors.New("track has not been analyzed")
	ErrMissingTrackID = errors.New("track id is required")
)

// SubmissionRecorder persists submissions and decisions. The service works
// without one.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, sub models.SubmissionResult) error
	RecordDecision(ctx context.Context, opportunityID string, status models.Status, at time.Time) error
}

type Deps struct {
	Scorer   *scoring.Scorer
	Catalog  *catalog.Catalog
	Engine   *matching.Engine
	Cache    *cache.Cache[models.Analysis]
	Recorder SubmissionRecorder
	Now      func() time.Time
}

type Service struct {
	scorer   *scoring.Scorer
	catalog  *catalog.Catalog
	engine   *matching.Engine
	cache    *cache.Cache[models.Analysis]
	recorder SubmissionRecorder
	now      func() time.Time
	log      zerolog.Logger

	// profiles remembers the last profile per track so an expired cache
	// entry can be recomputed.
	mu       sync.RWMutex
	profiles map[string]models.FeatureProfile
	versions map[string]int

	subMu       sync.Mutex
	submissions []models.SubmissionResult
}

func New(d Deps) *Service {
	s := &Service{
		scorer:   d.Scorer,
		catalog:  d.Catalog,
		engine:   d.Engine,
		cache:    d.Cache,
		recorder: d.Recorder,
		now:      d.Now,
		log:      logging.Component("service"),
		profiles: make(map[string]models.FeatureProfile),
		versions: make(map[string]int),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.engine == nil {
		s.engine = matching.NewEngine(matching.DefaultCompatibility())
	}
	if s.cache == nil {
		s.cache = cache.New[models.Analysis](30 * time.Minute)
	}
	return s
}

// Analyze scores a track. A fresh cached analysis of the same profile is
// returned as is; anything else is a recomputation with a new version.
func (s *Service) Analyze(ctx context.Context, trackID string, p models.FeatureProfile) (models.PotentialScore, error) {
	if err := ctx.Err(); err != nil {
		return models.PotentialScore{}, err
	}
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return models.PotentialScore{}, ErrMissingTrackID
	}

	if e, ok := s.cache.Get(trackID); ok && e.Value.Profile == p {
		return e.Value.Score, nil
	}

	a, err := s.compute(ctx, trackID, p)
	if err != nil {
		return models.PotentialScore{}, err
	}
	return a.Score, nil
}

func (s *Service) compute(ctx context.Context, trackID string, p models.FeatureProfile) (models.Analysis, error) {
	start := time.Now()
	a, err := s.scorer.Analyze(trackID, p)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("analyze %s: %w", trackID, err)
	}

	// version, profile and cache entry move together
	s.mu.Lock()
	s.versions[trackID]++
	a.Score.Version = s.versions[trackID]
	s.profiles[trackID] = p
	s.cache.Put(trackID, a)
	s.mu.Unlock()

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	logging.Ctx(ctx).Debug().
		Str("track_id", trackID).
		Int("overall", a.Score.Overall).
		Int("version", a.Score.Version).
		Str("genre", a.Genre.Genre).
		Msg("track analyzed")
	return a, nil
}

// Analysis returns the full analysis for a track, recomputing it from the
// last known profile when the cached entry has expired.
func (s *Service) Analysis(ctx context.Context, trackID string) (models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return models.Analysis{}, err
	}
	if e, ok := s.cache.Get(trackID); ok {
		return e.Value, nil
	}

	s.mu.RLock()
	p, ok := s.profiles[trackID]
	s.mu.RUnlock()
	if !ok {
		return models.Analysis{}, fmt.Errorf("%w: %s", ErrNotAnalyzed, trackID)
	}
	return s.compute(ctx, trackID, p)
}

// FindMatches ranks the catalog against the track's current analysis.
func (s *Service) FindMatches(ctx context.Context, trackID string) ([]models.Match, error) {
	a, err := s.Analysis(ctx, trackID)
	if err != nil {
		return nil, err
	}
	matches := s.engine.Match(a, s.catalog.List(""), s.now())
	metrics.MatchesReturned.Observe(float64(len(matches)))
	return matches, nil
}

// ListOpportunities returns the catalog entries that pass f.
func (s *Service) ListOpportunities(ctx context.Context, f catalog.Filter) ([]models.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Apply(s.catalog.List(""), s.now()), nil
}

func (s *Service) Opportunity(ctx context.Context, id string) (models.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return models.Opportunity{}, err
	}
	return s.catalog.Get(id)
}

func (s *Service) Insights(ctx context.Context) (models.Insights, error) {
	if err := ctx.Err(); err != nil {
		return models.Insights{}, err
	}
	return s.catalog.Insights(s.now()), nil
}

// Submit moves each named opportunity to submitted. Opportunities that are
// unknown or no longer available get a result carrying the error; the rest
// of the batch still goes through.
func (s *Service) Submit(ctx context.Context, trackID string, opportunityIDs []string) ([]models.SubmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return nil, ErrMissingTrackID
	}

	log := logging.Ctx(ctx)
	results := make([]models.SubmissionResult, 0, len(opportunityIDs))
	for _, id := range opportunityIDs {
		now := s.now()
		opp, err := s.catalog.Transition(id, models.StatusSubmitted, now)
		if err != nil {
			metrics.RecordSubmission(false)
			failed := models.SubmissionResult{TrackID: trackID, OpportunityID: id, Error: err.Error()}
			if cur, gerr := s.catalog.Get(id); gerr == nil {
				failed.Status = cur.Status
			}
			results = append(results, failed)
			continue
		}

		res := models.SubmissionResult{
			ID:               uuid.NewString(),
			TrackID:          trackID,
			OpportunityID:    opp.ID,
			OpportunityTitle: opp.Title,
			Category:         opp.Category,
			Status:           models.StatusSubmitted,
			SubmittedAt:      opp.SubmittedAt,
		}
		metrics.RecordSubmission(true)

		s.subMu.Lock()
		s.submissions = append(s.submissions, res)
		s.subMu.Unlock()

		if s.recorder != nil {
			if err := s.recorder.RecordSubmission(ctx, res); err != nil {
				log.Warn().Err(err).Str("opportunity_id", opp.ID).Msg("failed to persist submission")
			}
		}
		results = append(results, res)
	}

	log.Info().Str("track_id", trackID).Int("requested", len(opportunityIDs)).Msg("submissions processed")
	return results, nil
}

// Decide records the supervisor's answer for a submitted opportunity.
func (s *Service) Decide(ctx context.Context, opportunityID string, accepted bool) (models.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return models.Opportunity{}, err
	}
	to := models.StatusRejected
	if accepted {
		to = models.StatusAccepted
	}

	now := s.now()
	opp, err := s.catalog.Transition(opportunityID, to, now)
	if err != nil {
		return models.Opportunity{}, err
	}

	at := now.UTC()
	s.subMu.Lock()
	for i := range s.submissions {
		sub := &s.submissions[i]
		if sub.OpportunityID == opportunityID && sub.Status == models.StatusSubmitted {
			sub.Status = to
			sub.DecidedAt = &at
		}
	}
	s.subMu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.RecordDecision(ctx, opportunityID, to, at); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("opportunity_id", opportunityID).Msg("failed to persist decision")
		}
	}
	return opp, nil
}

// Submissions returns every submission recorded by this process.
func (s *Service) Submissions() []models.SubmissionResult {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	out := make([]models.SubmissionResult, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// SubmissionStats summarises submission outcomes. Response time is measured
// from submission to decision.
func (s *Service) SubmissionStats() models.SubmissionStats {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	var st models.SubmissionStats
	var responseDays float64
	var decided int
	for _, sub := range s.submissions {
		st.Total++
		switch sub.Status {
		case models.StatusSubmitted:
			st.Pending++
		case models.StatusAccepted:
			st.Accepted++
		case models.StatusRejected:
			st.Rejected++
		}
		if sub.DecidedAt != nil && sub.SubmittedAt != nil {
			responseDays += sub.DecidedAt.Sub(*sub.SubmittedAt).Hours() / 24
			decided++
		}
	}
	if st.Total > 0 {
		st.AcceptanceRate = roundInt(float64(st.Accepted) / float64(st.Total) * 100)
	}
	if decided > 0 {
		st.AvgResponseDay = roundInt(responseDays / float64(decided))
	}
	return st
}

// Seed replaces the catalog with the seeder's opportunities.
func (s *Service) Seed(ctx context.Context, seeder catalog.Seeder) (int, error) {
	return s.catalog.Seed(ctx, seeder)
}

// PruneAnalyses drops expired cache entries.
func (s *Service) PruneAnalyses(now time.Time) int {
	return s.cache.Prune(now)
}

func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}
