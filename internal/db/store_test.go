package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/david/syncscout/internal/models"
)

func TestDecodeRequirements(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(models.Requirements) bool
	}{
		{"empty", "", false, func(r models.Requirements) bool { return r.IsZero() }},
		{"null", "null", false, func(r models.Requirements) bool { return r.IsZero() }},
		{"object", "{}", false, func(r models.Requirements) bool { return r.IsZero() }},
		{"tempo only", `{"tempo":{"min":100,"max":130}}`, false, func(r models.Requirements) bool {
			return r.Tempo != nil && r.Tempo.Max == 130 && r.Energy == nil
		}},
		{"garbage", `{"tempo":`, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequirements([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(got) {
				t.Fatalf("unexpected requirements %+v", got)
			}
		})
	}
}

func TestEncodeRequirements_ZeroIsEmptyObject(t *testing.T) {
	got, err := encodeRequirements(models.Requirements{})
	if err != nil || string(got) != "{}" {
		t.Fatalf("expected {}, got %q (%v)", got, err)
	}
}

func TestMigrationFiles_Ordered(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migration files: %v", err)
	}
	if len(files) == 0 || files[0] != "001_init.sql" {
		t.Fatalf("expected 001_init.sql first, got %v", files)
	}
}

func TestStore_SubmissionRoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	defer pool.Close()
	if err := ApplyMigrations(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := NewStore(pool)
	now := time.Now().UTC().Truncate(time.Second)
	opp := models.Opportunity{
		ID:           "test-" + now.Format("150405.000000000"),
		Title:        "Store round trip",
		Category:     models.CategoryGame,
		Budget:       "$5,000",
		Requirements: models.Requirements{Tempo: &models.Range{Min: 100, Max: 130}},
		Deadline:     now.Add(24 * time.Hour),
		Status:       models.StatusAvailable,
	}
	if err := store.SaveOpportunity(ctx, opp); err != nil {
		t.Fatalf("save: %v", err)
	}
	defer pool.Exec(ctx, "DELETE FROM sync_opportunities WHERE id = $1", opp.ID)
	defer pool.Exec(ctx, "DELETE FROM submissions WHERE opportunity_id = $1", opp.ID)

	seeded, err := store.SeedOpportunities(ctx, now)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	found := false
	for _, o := range seeded {
		if o.ID == opp.ID {
			found = o.Requirements.Tempo != nil && o.Requirements.Tempo.Min == 100
		}
	}
	if !found {
		t.Fatalf("expected %s with requirements in seed results", opp.ID)
	}

	sub := models.SubmissionResult{ID: opp.ID + "-sub", TrackID: "track-1", OpportunityID: opp.ID, Status: models.StatusSubmitted, SubmittedAt: &now}
	if err := store.RecordSubmission(ctx, sub); err != nil {
		t.Fatalf("record submission: %v", err)
	}
	if err := store.RecordDecision(ctx, opp.ID, models.StatusAccepted, now.Add(time.Hour)); err != nil {
		t.Fatalf("record decision: %v", err)
	}

	got, err := store.GetOpportunity(ctx, opp.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}
}
