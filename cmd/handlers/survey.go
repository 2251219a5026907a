package handlers

import (
	"context"
	"fmt"
	"time"

	"chartmood/internal/config"
	"chartmood/internal/logger"
	"chartmood/internal/store"
	"chartmood/internal/survey"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSurveyCmd creates the public-health survey ingestion command
func NewSurveyCmd() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Ingest the public-health pulse survey feed",
		Long: `Fetch one batch of raw survey rows and store them as normalized
facts, then refresh the national weekly trend summary. Raw ingestion is
bounded by pipeline.batch_quota; the weekly summary is upserted wholesale,
one row per week.

The raw-fact offset is not persisted between runs. Pass increasing
--offset values to walk the feed; re-running with the same offset is a
no-op since facts are deduplicated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSurvey(cmd.Context(), offset)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "feed offset for raw fact ingestion")

	return cmd
}

// summaryFetchLimit covers the full national time series in one request.
const summaryFetchLimit = 5000

func runSurvey(ctx context.Context, offset int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithRunID(uuid.NewString())

	client := survey.New(cfg.Survey.BaseURL,
		config.ParseTimeout(cfg.Survey.Timeout, 30*time.Second))

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	// Raw facts, one quota-bounded batch per run.
	rows, err := client.FetchRows(ctx, cfg.Pipeline.BatchQuota, offset)
	if err != nil {
		return err
	}
	inserted := 0
	for _, row := range rows {
		ok, err := s.InsertSurveyFact(row)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	log.Info().Int("fetched", len(rows)).Int("inserted", inserted).Msg("raw survey facts ingested")

	// Weekly national summary, refreshed wholesale.
	allRows, err := client.FetchRows(ctx, summaryFetchLimit, 0)
	if err != nil {
		return err
	}
	trends := survey.WeeklyTrends(allRows)
	for _, trend := range trends {
		if err := s.UpsertWeeklyTrend(trend); err != nil {
			return err
		}
	}
	log.Info().Int("weeks", len(trends)).Msg("weekly trends upserted")

	fmt.Printf("Inserted %d raw survey facts, upserted %d weekly trends\n", inserted, len(trends))
	return nil
}
