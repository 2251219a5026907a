// Package store is the SQLite entity store for the pipeline. Schema
// creation is idempotent and runs on every open; uniqueness constraints,
// not application-level dedup, are the correctness backstop for re-runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding the chart, catalog, and survey
// tables.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at the given path and ensures the
// schema exists. The path is always explicit; there is no package-level
// default location.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// initialize creates the tables and indexes. Safe to invoke repeatedly.
func (s *Store) initialize() error {
	artistsTable := `
	CREATE TABLE IF NOT EXISTS artists (
		artist_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		artist_name TEXT UNIQUE NOT NULL
	);`

	chartEntriesTable := `
	CREATE TABLE IF NOT EXISTS chart_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		song_title TEXT NOT NULL,
		artist_id  INTEGER NOT NULL,
		genre      TEXT,
		chart_date TEXT NOT NULL,
		FOREIGN KEY (artist_id) REFERENCES artists (artist_id) ON DELETE CASCADE,
		UNIQUE (artist_id, song_title, chart_date)
	);`

	catalogEntriesTable := `
	CREATE TABLE IF NOT EXISTS catalog_entries (
		song_id           INTEGER PRIMARY KEY AUTOINCREMENT,
		chart_entry_id    INTEGER NOT NULL,
		external_track_id TEXT NOT NULL,
		genre             TEXT,
		popularity        INTEGER,
		release_year      INTEGER,
		FOREIGN KEY (chart_entry_id) REFERENCES chart_entries (id) ON DELETE CASCADE
	);`

	audioFeaturesTable := `
	CREATE TABLE IF NOT EXISTS audio_features (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		song_id          INTEGER NOT NULL,
		valence          REAL,
		energy           REAL,
		danceability     REAL,
		tempo            REAL,
		acousticness     REAL,
		instrumentalness REAL,
		FOREIGN KEY (song_id) REFERENCES catalog_entries (song_id) ON DELETE CASCADE
	);`

	popularityTable := `
	CREATE TABLE IF NOT EXISTS popularity_observations (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		song_id        INTEGER NOT NULL,
		listener_count INTEGER,
		playcount      INTEGER,
		FOREIGN KEY (song_id) REFERENCES catalog_entries (song_id) ON DELETE CASCADE
	);`

	surveyGroupsTable := `
	CREATE TABLE IF NOT EXISTS survey_groups (
		group_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		group_name TEXT NOT NULL UNIQUE
	);`

	surveyStatesTable := `
	CREATE TABLE IF NOT EXISTS survey_states (
		state_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		state_name TEXT NOT NULL UNIQUE
	);`

	surveyIndicatorsTable := `
	CREATE TABLE IF NOT EXISTS survey_indicators (
		indicator_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		indicator_name TEXT NOT NULL UNIQUE
	);`

	surveyTimePeriodsTable := `
	CREATE TABLE IF NOT EXISTS survey_time_periods (
		time_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		start_date TEXT NOT NULL UNIQUE
	);`

	surveyRawFactsTable := `
	CREATE TABLE IF NOT EXISTS survey_raw_facts (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		group_id     INTEGER NOT NULL,
		state_id     INTEGER NOT NULL,
		indicator_id INTEGER NOT NULL,
		time_id      INTEGER NOT NULL,
		value        REAL,
		FOREIGN KEY (group_id) REFERENCES survey_groups (group_id),
		FOREIGN KEY (state_id) REFERENCES survey_states (state_id),
		FOREIGN KEY (indicator_id) REFERENCES survey_indicators (indicator_id),
		FOREIGN KEY (time_id) REFERENCES survey_time_periods (time_id),
		UNIQUE (group_id, state_id, indicator_id, time_id)
	);`

	weeklyTrendsTable := `
	CREATE TABLE IF NOT EXISTS survey_weekly_trends (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		week               TEXT NOT NULL,
		anxiety_percent    REAL,
		depression_percent REAL
	);`

	tables := []string{
		artistsTable, chartEntriesTable, catalogEntriesTable,
		audioFeaturesTable, popularityTable,
		surveyGroupsTable, surveyStatesTable, surveyIndicatorsTable,
		surveyTimePeriodsTable, surveyRawFactsTable, weeklyTrendsTable,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Uniqueness indexes backing the upsert targets.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_audio_features_song
		 ON audio_features (song_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_weekly_trends_week
		 ON survey_weekly_trends (week);`,
	}
	for _, index := range indexes {
		if _, err := s.db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats holds row counts and file size for the database
type Stats struct {
	ArtistCount       int
	ChartEntryCount   int
	CatalogEntryCount int
	FeatureCount      int
	PopularityCount   int
	RawFactCount      int
	WeeklyTrendCount  int
	FileSize          int64
	LastUpdated       time.Time
}

// GetStats returns row counts per table and the database file size
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query  string
		target *int
	}{
		{"SELECT COUNT(*) FROM artists", &stats.ArtistCount},
		{"SELECT COUNT(*) FROM chart_entries", &stats.ChartEntryCount},
		{"SELECT COUNT(*) FROM catalog_entries", &stats.CatalogEntryCount},
		{"SELECT COUNT(*) FROM audio_features", &stats.FeatureCount},
		{"SELECT COUNT(*) FROM popularity_observations", &stats.PopularityCount},
		{"SELECT COUNT(*) FROM survey_raw_facts", &stats.RawFactCount},
		{"SELECT COUNT(*) FROM survey_weekly_trends", &stats.WeeklyTrendCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.FileSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// Clear removes all rows from every table
func (s *Store) Clear() error {
	tables := []string{
		"survey_raw_facts", "survey_weekly_trends",
		"survey_groups", "survey_states", "survey_indicators", "survey_time_periods",
		"popularity_observations", "audio_features", "catalog_entries",
		"chart_entries", "artists",
	}
	for _, table := range tables {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}
