package handlers

import (
	"fmt"
	"os"

	"chartmood/internal/config"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all pipeline stages attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartmood",
		Short: "chartmood builds a local dataset linking chart-song mood to weekly mental-health survey trends.",
		Long: `chartmood is a batch data pipeline. Each subcommand is one stage:

  scrape      Scrape weekly chart listings into the local database
  resolve     Match scraped songs against the music catalog API
  popularity  Record listener/playcount snapshots for resolved songs
  survey      Ingest the public-health pulse survey feed
  merge       Backfill audio features from a bulk reference CSV
  stats       Summarize the dataset and the weekly mood/survey join
  db          Inspect or reset the database

Stages are independent runs bounded by pipeline.batch_quota, so repeated
invocations advance through the backlog without reprocessing anything.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chartmood.yaml)")

	rootCmd.AddCommand(NewScrapeCmd())
	rootCmd.AddCommand(NewResolveCmd())
	rootCmd.AddCommand(NewPopularityCmd())
	rootCmd.AddCommand(NewSurveyCmd())
	rootCmd.AddCommand(NewMergeCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewDBCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the process-wide configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
