package handlers

import (
	"fmt"
	"strings"
	"time"

	"chartmood/internal/config"
	"chartmood/internal/logger"
	"chartmood/internal/scrape"
	"chartmood/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the chart scraping command
func NewScrapeCmd() *cobra.Command {
	var weeks []string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape weekly chart listings into the database",
		Long: `Scrape one or more weekly chart pages and store the listings.

Each week is a chart URL suffix (YYYY-MM-DD). Re-scraping a week is safe:
listings already present are skipped via the chart entry uniqueness
constraint. The run stops once pipeline.batch_quota new entries have been
stored.

Examples:
  chartmood scrape --week 2020-04-25
  chartmood scrape --week 2020-04-25 --week 2020-05-02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(weeks)
		},
	}

	cmd.Flags().StringArrayVar(&weeks, "week", nil, "chart week to scrape (YYYY-MM-DD, repeatable)")
	_ = cmd.MarkFlagRequired("week")

	return cmd
}

func runScrape(weeks []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithRunID(uuid.NewString())

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	scraper := scrape.New(cfg.Scrape.UserAgent,
		config.ParseTimeout(cfg.Scrape.Timeout, 20*time.Second))

	quota := cfg.Pipeline.BatchQuota
	stored := 0
	skipped := 0

	for _, week := range weeks {
		if stored >= quota {
			break
		}

		chartURL := strings.TrimRight(cfg.Scrape.ChartURL, "/") + "/" + week + "/"
		log.Info().Str("week", week).Msg("scraping chart")

		entries, err := scraper.FetchChart(chartURL)
		if err != nil {
			// One unreachable week should not sink the whole run.
			log.Warn().Err(err).Str("week", week).Msg("chart fetch failed, skipping week")
			continue
		}

		for _, entry := range entries {
			if stored >= quota {
				break
			}
			artistID, err := s.GetOrCreateArtist(entry.ArtistName)
			if err != nil {
				return err
			}
			inserted, err := s.InsertChartEntry(entry.SongTitle, artistID, nil, entry.ChartDate)
			if err != nil {
				return err
			}
			if inserted {
				stored++
			} else {
				skipped++
			}
		}
	}

	log.Info().Int("stored", stored).Int("already_present", skipped).Msg("scrape finished")
	fmt.Printf("Stored %d new chart entries (%d already present)\n", stored, skipped)
	return nil
}
