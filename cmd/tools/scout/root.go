package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/david/syncscout/internal/cache"
	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/models"
	"github.com/david/syncscout/internal/scoring"
	"github.com/david/syncscout/internal/service"
)

type options struct {
	tablesPath string
	seedPath   string
	signal     string
	seed       uint64
	jsonOut    bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "scout",
		Short:         "Score tracks and find sync placements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{Level: "warn", Format: "console", Output: cmd.ErrOrStderr()})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.tablesPath, "market-tables", "", "Market tables YAML (default: embedded)")
	rootCmd.PersistentFlags().StringVar(&opts.seedPath, "catalog", "", "Catalog seed YAML (default: embedded)")
	rootCmd.PersistentFlags().StringVar(&opts.signal, "signal", "none", "Quality signal: none or random")
	rootCmd.PersistentFlags().Uint64Var(&opts.seed, "seed", 1, "Seed for the random quality signal")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newAnalyzeCommand(opts))
	rootCmd.AddCommand(newMatchCommand(opts))
	rootCmd.AddCommand(newOpportunitiesCommand(opts))
	rootCmd.AddCommand(newBudgetCommand(opts))
	return rootCmd
}

// newService builds an in-process service over the seed catalog.
func (o *options) newService(ctx context.Context) (*service.Service, error) {
	tables, err := scoring.NewTableStore(o.tablesPath)
	if err != nil {
		return nil, err
	}
	cat := catalog.New()
	if _, err := cat.Seed(ctx, catalog.YAMLSeeder{Path: o.seedPath}); err != nil {
		return nil, err
	}
	return service.New(service.Deps{
		Scorer:  scoring.NewScorer(tables, scoring.WithSignal(scoring.NewSignal(o.signal, o.seed))),
		Catalog: cat,
		Cache:   cache.New[models.Analysis](time.Hour),
	}), nil
}

func readProfile(path string) (models.FeatureProfile, error) {
	var in scoring.ProfileInput
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.FeatureProfile{}, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return models.FeatureProfile{}, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return in.Profile()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
