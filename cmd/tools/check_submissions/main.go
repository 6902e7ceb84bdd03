package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/syncscout/internal/db"
	"github.com/david/syncscout/internal/logging"
)

func main() {
	limit := flag.Int("limit", 20, "Number of submissions to show")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx, "")
	if err != nil {
		logging.Fatal().Err(err).Msg("connect")
	}
	defer pool.Close()

	subs, err := db.NewStore(pool).ListSubmissions(ctx, *limit)
	if err != nil {
		logging.Fatal().Err(err).Msg("list submissions")
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Track", "Opportunity", "Category", "Status", "Submitted", "Response"})

	for _, s := range subs {
		submitted, response := "-", "Pending"
		if s.SubmittedAt != nil {
			submitted = s.SubmittedAt.Format(time.DateTime)
			if s.DecidedAt != nil {
				response = s.DecidedAt.Sub(*s.SubmittedAt).Round(time.Hour).String()
			}
		}
		t.AppendRow(table.Row{s.TrackID, s.OpportunityTitle, s.Category, s.Status, submitted, response})
	}
	t.Render()
}
