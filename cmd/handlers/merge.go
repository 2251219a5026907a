package handlers

import (
	"fmt"

	"chartmood/internal/logger"
	"chartmood/internal/refdata"
	"chartmood/internal/resolve"
	"chartmood/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewMergeCmd creates the bulk audio-features merge command
func NewMergeCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Backfill audio features from the bulk reference CSV",
		Long: `Reconcile the bulk audio-features reference file against resolved
songs on normalized (title, artist) keys and upsert the matched acoustic
measures. Duplicate reference rows collapse to the highest-popularity one,
and a reference row without a valence value is never applied. Running the
merge twice with the same file leaves the database unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(csvPath)
		},
	}

	cmd.Flags().StringVar(&csvPath, "file", "", "reference CSV path (default from reference.csv_path)")

	return cmd
}

func runMerge(csvPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithRunID(uuid.NewString())

	if csvPath == "" {
		csvPath = cfg.Reference.CSVPath
	}

	refRows, err := refdata.LoadFile(csvPath)
	if err != nil {
		return err
	}
	log.Info().Int("rows", len(refRows)).Str("file", csvPath).Msg("loaded reference data")

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	summary, err := resolve.BulkMerge(s, refRows)
	if err != nil {
		return err
	}

	log.Info().
		Int("reference_rows", summary.ReferenceRows).
		Int("deduped_keys", summary.Deduped).
		Int("applied", summary.Applied).
		Int("unmatched_songs", summary.Unmatched).
		Msg("merge finished")
	fmt.Printf("Merged %d reference rows (%d unique keys): applied features to %d songs, %d songs unmatched\n",
		summary.ReferenceRows, summary.Deduped, summary.Applied, summary.Unmatched)
	return nil
}
