package main

import (
	"context"
	"fmt"

	"github.com/david/syncscout/internal/db"
	"github.com/david/syncscout/internal/logging"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx, "")
	if err != nil {
		logging.Fatal().Err(err).Msg("Unable to connect to database")
	}
	defer pool.Close()

	var total, available, withDeadline, withRequirements int
	err = pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'available'),
			count(deadline_at),
			count(*) FILTER (WHERE requirements <> '{}'::jsonb)
		FROM sync_opportunities
	`).Scan(&total, &available, &withDeadline, &withRequirements)
	if err != nil {
		logging.Fatal().Err(err).Msg("Query failed")
	}

	var submissions, decided int
	err = pool.QueryRow(ctx, `SELECT count(*), count(decided_at) FROM submissions`).Scan(&submissions, &decided)
	if err != nil {
		logging.Fatal().Err(err).Msg("Query failed")
	}

	fmt.Printf("Opportunities: %d\n", total)
	fmt.Printf("Available: %d\n", available)
	fmt.Printf("With Deadline: %d\n", withDeadline)
	fmt.Printf("With Requirements: %d\n", withRequirements)
	fmt.Printf("Submissions: %d (decided %d)\n", submissions, decided)
}
