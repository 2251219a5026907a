package store

import (
	"database/sql"
	"fmt"

	"chartmood/internal/core"
)

// lookupID resolves a name to its id in one of the survey lookup tables,
// inserting on first sighting.
func (s *Store) lookupID(table, idColumn, nameColumn, name string) (int64, error) {
	var id int64
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", idColumn, table, nameColumn)
	err := s.db.QueryRow(query, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up %s: %w", table, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", table, nameColumn)
	result, err := s.db.Exec(insert, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return result.LastInsertId()
}

// InsertSurveyFact normalizes one raw survey row through the four lookup
// tables and inserts the fact. A fact already present for the same
// (group, state, indicator, week) 4-tuple is an idempotent no-op; the
// returned bool reports whether a new row was inserted.
func (s *Store) InsertSurveyFact(row core.SurveyRow) (bool, error) {
	groupID, err := s.lookupID("survey_groups", "group_id", "group_name", row.Group)
	if err != nil {
		return false, err
	}
	stateID, err := s.lookupID("survey_states", "state_id", "state_name", row.State)
	if err != nil {
		return false, err
	}
	indicatorID, err := s.lookupID("survey_indicators", "indicator_id", "indicator_name", row.Indicator)
	if err != nil {
		return false, err
	}
	timeID, err := s.lookupID("survey_time_periods", "time_id", "start_date", row.WeekStart)
	if err != nil {
		return false, err
	}

	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO survey_raw_facts (group_id, state_id, indicator_id, time_id, value)
		 VALUES (?, ?, ?, ?, ?)`,
		groupID, stateID, indicatorID, timeID, row.Value,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert survey fact: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertWeeklyTrend stores the national weekly aggregate, keyed uniquely
// on week.
func (s *Store) UpsertWeeklyTrend(trend core.WeeklyTrend) error {
	_, err := s.db.Exec(
		`INSERT INTO survey_weekly_trends (week, anxiety_percent, depression_percent)
		 VALUES (?, ?, ?)
		 ON CONFLICT (week) DO UPDATE SET
			anxiety_percent    = excluded.anxiety_percent,
			depression_percent = excluded.depression_percent`,
		trend.Week, trend.AnxietyPercent, trend.DepressionPercent,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly trend: %w", err)
	}
	return nil
}

// GetWeeklyTrend returns the stored aggregate for a week, or nil when the
// week has not been ingested.
func (s *Store) GetWeeklyTrend(week string) (*core.WeeklyTrend, error) {
	var trend core.WeeklyTrend
	err := s.db.QueryRow(
		`SELECT week, anxiety_percent, depression_percent
		 FROM survey_weekly_trends WHERE week = ?`,
		week,
	).Scan(&trend.Week, &trend.AnxietyPercent, &trend.DepressionPercent)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan weekly trend: %w", err)
	}
	return &trend, nil
}
