package store

import "fmt"

// WeeklyMood is one chart week's average song mood joined against the
// survey aggregate for the same week, when one exists.
type WeeklyMood struct {
	Week              string
	SongCount         int
	AvgValence        *float64
	AvgEnergy         *float64
	AnxietyPercent    *float64
	DepressionPercent *float64
}

// WeeklyMoodReport averages valence and energy of the charting songs per
// chart week and joins the survey trend for that week.
func (s *Store) WeeklyMoodReport() ([]WeeklyMood, error) {
	rows, err := s.db.Query(
		`SELECT ce.chart_date,
		        COUNT(af.id),
		        AVG(af.valence),
		        AVG(af.energy),
		        wt.anxiety_percent,
		        wt.depression_percent
		 FROM chart_entries ce
		 JOIN catalog_entries cat ON cat.chart_entry_id = ce.id
		 JOIN audio_features af ON af.song_id = cat.song_id
		 LEFT JOIN survey_weekly_trends wt ON wt.week = ce.chart_date
		 WHERE af.valence IS NOT NULL
		 GROUP BY ce.chart_date
		 ORDER BY ce.chart_date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly mood report: %w", err)
	}
	defer rows.Close()

	var report []WeeklyMood
	for rows.Next() {
		var wm WeeklyMood
		if err := rows.Scan(&wm.Week, &wm.SongCount, &wm.AvgValence, &wm.AvgEnergy,
			&wm.AnxietyPercent, &wm.DepressionPercent); err != nil {
			return nil, fmt.Errorf("failed to scan weekly mood row: %w", err)
		}
		report = append(report, wm)
	}
	return report, rows.Err()
}
