package handlers

import (
	"context"
	"fmt"
	"time"

	"chartmood/internal/config"
	"chartmood/internal/logger"
	"chartmood/internal/resolve"
	"chartmood/internal/spotify"
	"chartmood/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewResolveCmd creates the catalog resolution command
func NewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Match unresolved chart entries against the music catalog",
		Long: `Look up each scraped chart entry on the catalog API and store the
matched track id, popularity, and release year. Entries without a catalog
match are skipped and retried on a later run. Processes up to
pipeline.batch_quota entries per run to respect API rate limits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context())
		},
	}
}

func runResolve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithRunID(uuid.NewString())

	client, err := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		config.ParseTimeout(cfg.Spotify.Timeout, 10*time.Second))
	if err != nil {
		return err
	}

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	lookup := func(ctx context.Context, title, artist string) (*resolve.Track, error) {
		track, err := client.SearchTrack(ctx, title, artist)
		if err != nil {
			return nil, err
		}
		if track == nil {
			return nil, nil
		}
		return &resolve.Track{
			ExternalID:  track.ID,
			Popularity:  track.Popularity,
			ReleaseDate: track.ReleaseDate,
		}, nil
	}

	summary, err := resolve.New(s, lookup).Run(ctx, cfg.Pipeline.BatchQuota)
	if err != nil {
		return err
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("matched", summary.Matched).
		Int("skipped", summary.Skipped).
		Msg("resolve finished")
	fmt.Printf("Processed %d chart entries: %d matched, %d skipped\n",
		summary.Processed, summary.Matched, summary.Skipped)
	return nil
}
