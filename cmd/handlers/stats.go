package handlers

import (
	"fmt"
	"strings"

	"chartmood/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewStatsCmd creates the dataset summary command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the dataset and the weekly mood/survey join",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runStats() error {
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

	fmt.Println(headingStyle.Render("Dataset"))
	fmt.Printf("  Artists:                  %d\n", stats.ArtistCount)
	fmt.Printf("  Chart entries:            %d\n", stats.ChartEntryCount)
	fmt.Printf("  Catalog entries:          %d\n", stats.CatalogEntryCount)
	fmt.Printf("  Audio feature rows:       %d\n", stats.FeatureCount)
	fmt.Printf("  Popularity observations:  %d\n", stats.PopularityCount)
	fmt.Printf("  Raw survey facts:         %d\n", stats.RawFactCount)
	fmt.Printf("  Weekly survey trends:     %d\n", stats.WeeklyTrendCount)

	report, err := s.WeeklyMoodReport()
	if err != nil {
		return err
	}
	if len(report) == 0 {
		fmt.Println(dimStyle.Render("\nNo weeks with audio features yet; run resolve and merge first."))
		return nil
	}

	fmt.Println(headingStyle.Render("\nWeekly mood vs. survey"))
	fmt.Printf("  %-12s %5s %9s %8s %9s %12s\n",
		"week", "songs", "valence", "energy", "anxiety%", "depression%")
	fmt.Println(dimStyle.Render("  " + strings.Repeat("-", 60)))
	for _, week := range report {
		fmt.Printf("  %-12s %5d %9s %8s %9s %12s\n",
			week.Week, week.SongCount,
			formatMeasure(week.AvgValence), formatMeasure(week.AvgEnergy),
			formatMeasure(week.AnxietyPercent), formatMeasure(week.DepressionPercent))
	}

	return nil
}

func formatMeasure(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
