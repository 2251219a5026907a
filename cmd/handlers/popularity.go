package handlers

import (
	"context"
	"fmt"
	"time"

	"chartmood/internal/config"
	"chartmood/internal/core"
	"chartmood/internal/lastfm"
	"chartmood/internal/logger"
	"chartmood/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewPopularityCmd creates the listener-count enrichment command
func NewPopularityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "popularity",
		Short: "Record listener/playcount snapshots for resolved songs",
		Long: `Fetch listener and play counts for resolved songs that have no
popularity observation yet. Observations are append-only snapshots, so a
later run against the same song adds a new row rather than overwriting.
Processes up to pipeline.batch_quota songs per run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPopularity(cmd.Context())
		},
	}
}

func runPopularity(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithRunID(uuid.NewString())

	client, err := lastfm.New(cfg.LastFM.APIKey, cfg.LastFM.BaseURL,
		config.ParseTimeout(cfg.LastFM.Timeout, 10*time.Second))
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

	songs, songIDs, err := s.SongsWithoutPopularity(cfg.Pipeline.BatchQuota)
	if err != nil {
		return err
	}
	log.Info().Int("candidates", len(songs)).Msg("songs without popularity data")

	stored := 0
	skipped := 0
	for i, song := range songs {
		pop, err := client.GetTrackPopularity(ctx, song.SongTitle, song.ArtistName)
		if err != nil {
			log.Warn().Err(err).Str("title", song.SongTitle).Msg("popularity lookup failed, skipping")
			skipped++
			continue
		}
		if pop == nil {
			log.Info().Str("title", song.SongTitle).Str("artist", song.ArtistName).
				Msg("no popularity data, skipping")
			skipped++
			continue
		}

		if err := s.AppendPopularityObservation(core.PopularityObservation{
			SongID:        songIDs[i],
			ListenerCount: &pop.Listeners,
			Playcount:     &pop.Playcount,
		}); err != nil {
			return err
		}
		stored++
	}

	log.Info().Int("stored", stored).Int("skipped", skipped).Msg("popularity finished")
	fmt.Printf("Stored %d popularity observations, skipped %d songs\n", stored, skipped)
	return nil
}
