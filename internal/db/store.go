package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/david/syncscout/internal/models"
)

// Store persists catalog seed data and submissions. It implements
// catalog.Seeder and service.SubmissionRecorder.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const opportunityCols = `id, title, category, source, description, genres, moods, budget,
	requirements, deadline_at, status, priority, contact, usage, exclusivity, territories,
	duration, submitted_at, created_at`

func scanOpportunity(scan func(dest ...any) error) (models.Opportunity, error) {
	var o models.Opportunity
	var category, status string
	var reqRaw []byte
	var deadline *time.Time

	err := scan(
		&o.ID, &o.Title, &category, &o.Source, &o.Description, &o.Genres, &o.Moods, &o.Budget,
		&reqRaw, &deadline, &status, &o.Priority, &o.Contact, &o.Usage, &o.Exclusivity, &o.Territories,
		&o.Duration, &o.SubmittedAt, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}

	o.Category = models.Category(category)
	o.Status = models.Status(status)
	if deadline != nil {
		o.Deadline = *deadline
	}
	if o.Requirements, err = decodeRequirements(reqRaw); err != nil {
		return o, fmt.Errorf("opportunity %s: %w", o.ID, err)
	}
	return o, nil
}

func decodeRequirements(raw []byte) (models.Requirements, error) {
	var req models.Requirements
	if len(raw) == 0 || string(raw) == "null" {
		return req, nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decode requirements: %w", err)
	}
	return req, nil
}

func encodeRequirements(req models.Requirements) ([]byte, error) {
	if req.IsZero() {
		return []byte("{}"), nil
	}
	return json.Marshal(req)
}

// SeedOpportunities returns the stored opportunities that are still open at now.
func (s *Store) SeedOpportunities(ctx context.Context, now time.Time) ([]models.Opportunity, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM sync_opportunities
		WHERE status <> 'expired'
		  AND (deadline_at IS NULL OR deadline_at >= $1)
		ORDER BY created_at, id
	`, opportunityCols)
	rows, err := s.pool.Query(ctx, sql, now)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var out []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SaveOpportunity inserts or updates one opportunity.
func (s *Store) SaveOpportunity(ctx context.Context, o models.Opportunity) error {
	return saveOpportunity(ctx, s.pool, o)
}

// SaveOpportunities writes a batch in one transaction.
func (s *Store) SaveOpportunities(ctx context.Context, opps []models.Opportunity) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, o := range opps {
		if err := saveOpportunity(ctx, tx, o); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func saveOpportunity(ctx context.Context, ex execer, o models.Opportunity) error {
	req, err := encodeRequirements(o.Requirements)
	if err != nil {
		return err
	}
	var deadline *time.Time
	if !o.Deadline.IsZero() {
		deadline = &o.Deadline
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = ex.Exec(ctx, `
		INSERT INTO sync_opportunities (
			id, title, category, source, description, genres, moods, budget,
			requirements, deadline_at, status, priority, contact, usage, exclusivity, territories,
			duration, submitted_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			description = EXCLUDED.description,
			genres = EXCLUDED.genres,
			moods = EXCLUDED.moods,
			budget = EXCLUDED.budget,
			requirements = EXCLUDED.requirements,
			deadline_at = EXCLUDED.deadline_at,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			contact = EXCLUDED.contact,
			usage = EXCLUDED.usage,
			exclusivity = EXCLUDED.exclusivity,
			territories = EXCLUDED.territories,
			duration = EXCLUDED.duration,
			submitted_at = EXCLUDED.submitted_at,
			updated_at = NOW()
	`,
		o.ID, o.Title, string(o.Category), o.Source, o.Description, nonNil(o.Genres), nonNil(o.Moods), o.Budget,
		req, deadline, string(o.Status), o.Priority, o.Contact, o.Usage, o.Exclusivity, nonNil(o.Territories),
		o.Duration, o.SubmittedAt, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save opportunity %s: %w", o.ID, err)
	}
	return nil
}

// RecordSubmission stores a submission and marks the opportunity submitted.
func (s *Store) RecordSubmission(ctx context.Context, sub models.SubmissionResult) error {
	submittedAt := time.Now().UTC()
	if sub.SubmittedAt != nil {
		submittedAt = *sub.SubmittedAt
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO submissions (id, track_id, opportunity_id, opportunity_title, category, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sub.ID, sub.TrackID, sub.OpportunityID, sub.OpportunityTitle, string(sub.Category), string(sub.Status), submittedAt); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE sync_opportunities SET status = $2, submitted_at = $3, updated_at = NOW() WHERE id = $1
	`, sub.OpportunityID, string(models.StatusSubmitted), submittedAt); err != nil {
		return fmt.Errorf("update opportunity status: %w", err)
	}
	return tx.Commit(ctx)
}

// RecordDecision closes the pending submissions for an opportunity.
func (s *Store) RecordDecision(ctx context.Context, opportunityID string, status models.Status, at time.Time) error {
	if status != models.StatusAccepted && status != models.StatusRejected {
		return fmt.Errorf("record decision: unexpected status %q", status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE submissions SET status = $2, decided_at = $3
		WHERE opportunity_id = $1 AND status = 'submitted'
	`, opportunityID, string(status), at); err != nil {
		return fmt.Errorf("update submissions: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE sync_opportunities SET status = $2, updated_at = NOW() WHERE id = $1
	`, opportunityID, string(status)); err != nil {
		return fmt.Errorf("update opportunity status: %w", err)
	}
	return tx.Commit(ctx)
}

// ListSubmissions returns the most recent submissions, newest first.
func (s *Store) ListSubmissions(ctx context.Context, limit int) ([]models.SubmissionResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, track_id, opportunity_id, opportunity_title, category, status, submitted_at, decided_at
		FROM submissions
		ORDER BY submitted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubmissionResult
	for rows.Next() {
		var sub models.SubmissionResult
		var category, status string
		var submittedAt time.Time
		if err := rows.Scan(&sub.ID, &sub.TrackID, &sub.OpportunityID, &sub.OpportunityTitle, &category, &status, &submittedAt, &sub.DecidedAt); err != nil {
			return nil, err
		}
		sub.Category = models.Category(category)
		sub.Status = models.Status(status)
		sub.SubmittedAt = &submittedAt
		out = append(out, sub)
	}
	return out, rows.Err()
}

// GetOpportunity loads one stored opportunity.
func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM sync_opportunities
		WHERE id = $1
	`, opportunityCols)
	o, err := scanOpportunity(s.pool.QueryRow(ctx, sql, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("not found: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
