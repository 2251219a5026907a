package handlers

import (
	"fmt"

	"chartmood/internal/logger"
	"chartmood/internal/store"

	"github.com/spf13/cobra"
)

// NewDBCmd creates the database management command
func NewDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect or reset the pipeline database",
	}

	dbCmd.AddCommand(newDBInitCmd())
	dbCmd.AddCommand(newDBStatsCmd())
	dbCmd.AddCommand(newDBClearCmd())

	return dbCmd
}

func newDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Long:  `Create the database file and schema. Safe to run repeatedly; existing data is untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer func() { _ = s.Close() }()

			fmt.Printf("Database ready at %s\n", cfg.Database.Path)
			return nil
		},
	}
}

func newDBStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts and storage information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = s.Close() }()

			stats, err := s.GetStats()
			if err != nil {
				return err
			}
			fmt.Printf("Database: %s (%d bytes, last updated %s)\n",
				cfg.Database.Path, stats.FileSize, stats.LastUpdated.Format("2006-01-02 15:04:05"))
			fmt.Printf("  artists=%d chart_entries=%d catalog_entries=%d audio_features=%d\n",
				stats.ArtistCount, stats.ChartEntryCount, stats.CatalogEntryCount, stats.FeatureCount)
			fmt.Printf("  popularity_observations=%d survey_raw_facts=%d survey_weekly_trends=%d\n",
				stats.PopularityCount, stats.RawFactCount, stats.WeeklyTrendCount)
			return nil
		},
	}
}

func newDBClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all rows from every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("refusing to clear the database without --confirm")
			}

			cfg, err := loadConfig()
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

			if err := s.Clear(); err != nil {
				return err
			}
			fmt.Println("Database cleared")
			return nil
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}
