package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/models"
)

func newAnalyzeCommand(opts *options) *cobra.Command {
	var trackID string
	cmd := &cobra.Command{
		Use:   "analyze <profile.json|->",
		Short: "Score a feature profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProfile(args[0])
			if err != nil {
				return err
			}
			svc, err := opts.newService(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := svc.Analyze(cmd.Context(), trackID, p); err != nil {
				return err
			}
			a, err := svc.Analysis(cmd.Context(), trackID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, a)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Track %s: overall %d, chart %d, confidence %d\n",
				a.TrackID, a.Score.Overall, a.Score.ChartScore, a.Score.Confidence)
			fmt.Fprintf(out, "Genre: %s (%s, confidence %.2f)\n", a.Genre.Genre, a.Genre.MarketPosition, a.Genre.Confidence)
			fmt.Fprintf(out, "Market opportunity: %s\n", a.Trends.MarketOpportunity)

			b := a.Score.Breakdown
			fmt.Fprintln(out, renderTable(
				[]string{"Factor", "Score"},
				[][]string{
					{"Hook strength", strconv.Itoa(b.HookStrength)},
					{"Production quality", strconv.Itoa(b.ProductionQuality)},
					{"Commercial appeal", strconv.Itoa(b.CommercialAppeal)},
					{"Radio friendly", strconv.Itoa(b.RadioFriendly)},
					{"Viral potential", strconv.Itoa(b.ViralPotential)},
					{"Crossover appeal", strconv.Itoa(b.CrossoverAppeal)},
					{"Trend alignment", strconv.Itoa(b.TrendAlignment)},
					{"Social overall", strconv.Itoa(a.Social.Overall)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			for _, r := range a.Recommendations {
				fmt.Fprintf(out, "- %s\n", r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&trackID, "track", "local", "Track id")
	return cmd
}

func newMatchCommand(opts *options) *cobra.Command {
	var trackID string
	cmd := &cobra.Command{
		Use:   "match <profile.json|->",
		Short: "Rank catalog opportunities for a feature profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProfile(args[0])
			if err != nil {
				return err
			}
			svc, err := opts.newService(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := svc.Analyze(cmd.Context(), trackID, p); err != nil {
				return err
			}
			matches, err := svc.FindMatches(cmd.Context(), trackID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, matches)
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No opportunities scored 60 or above.")
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, []string{
					m.Opportunity.Title,
					string(m.Opportunity.Category),
					strconv.Itoa(m.MatchScore),
					strconv.Itoa(m.SuccessProbability) + "%",
					formatRevenue(m.EstimatedRevenue),
					string(m.Competition),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Opportunity", "Category", "Match", "Success", "Revenue", "Competition"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&trackID, "track", "local", "Track id")
	return cmd
}

func newOpportunitiesCommand(opts *options) *cobra.Command {
	var category string
	var urgent, highValue bool
	var minBudget, maxBudget int64
	cmd := &cobra.Command{
		Use:   "opportunities",
		Short: "List catalog opportunities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := catalog.Filter{Urgent: urgent, HighValue: highValue, MinBudget: minBudget, MaxBudget: maxBudget}
			if category != "" {
				cat, err := models.ParseCategory(category)
				if err != nil {
					return err
				}
				f.Category = cat
			}
			svc, err := opts.newService(cmd.Context())
			if err != nil {
				return err
			}
			opps, err := svc.ListOpportunities(cmd.Context(), f)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, opps)
			}

			rows := make([][]string, 0, len(opps))
			for _, o := range opps {
				rows = append(rows, []string{
					o.ID,
					o.Title,
					string(o.Category),
					o.Budget,
					o.Deadline.Format(time.DateOnly),
					string(o.Status),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Category", "Budget", "Deadline", "Status"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only this category")
	cmd.Flags().BoolVar(&urgent, "urgent", false, "Only deadlines within 3 days")
	cmd.Flags().BoolVar(&highValue, "high-value", false, "Only average budget of 25,000 or more")
	cmd.Flags().Int64Var(&minBudget, "min-budget", 0, "Minimum budget")
	cmd.Flags().Int64Var(&maxBudget, "max-budget", 0, "Maximum budget")
	return cmd
}

func newBudgetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "budget <label>",
		Short: "Show the revenue estimate for a budget label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args, " ")
			rev := catalog.EstimateRevenue(label)
			if opts.jsonOut {
				return writeJSON(cmd, map[string]any{
					"label":       label,
					"revenue":     rev,
					"competition": catalog.CompetitionFor(rev),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (competition %s)\n", label, formatRevenue(rev), catalog.CompetitionFor(rev))
			return nil
		},
	}
}

func formatRevenue(r models.Revenue) string {
	return fmt.Sprintf("$%d-$%d (avg $%d)", r.Min, r.Max, r.Average)
}
