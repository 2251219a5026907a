package store

import (
	"database/sql"
	"fmt"

	"chartmood/internal/core"
)

// GetOrCreateArtist returns the artist id for the given name, inserting a
// new row on first sighting. Artists are never deleted once created.
func (s *Store) GetOrCreateArtist(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT artist_id FROM artists WHERE artist_name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up artist: %w", err)
	}

	result, err := s.db.Exec("INSERT INTO artists (artist_name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert artist: %w", err)
	}
	return result.LastInsertId()
}

// InsertChartEntry records one scraped chart listing. Duplicate scrapes of
// the same (artist, title, chart week) are idempotent no-ops; the returned
// bool reports whether a new row was inserted.
func (s *Store) InsertChartEntry(title string, artistID int64, genre *string, chartDate string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO chart_entries (song_title, artist_id, genre, chart_date)
		 VALUES (?, ?, ?, ?)`,
		title, artistID, genre, chartDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert chart entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UnresolvedChartEntries returns up to quota chart entries that have no
// catalog entry yet, joined with their artist name, ordered by id so that
// repeated runs page through the backlog deterministically.
func (s *Store) UnresolvedChartEntries(quota int) ([]core.ChartSong, error) {
	rows, err := s.db.Query(
		`SELECT ce.id, ce.song_title, a.artist_name
		 FROM chart_entries ce
		 JOIN artists a ON a.artist_id = ce.artist_id
		 LEFT JOIN catalog_entries cat ON cat.chart_entry_id = ce.id
		 WHERE cat.song_id IS NULL
		 ORDER BY ce.id ASC
		 LIMIT ?`,
		quota,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved chart entries: %w", err)
	}
	defer rows.Close()

	var songs []core.ChartSong
	for rows.Next() {
		var song core.ChartSong
		if err := rows.Scan(&song.ChartEntryID, &song.SongTitle, &song.ArtistName); err != nil {
			return nil, fmt.Errorf("failed to scan chart entry: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// CreateCatalogEntry inserts the catalog row for a chart entry together
// with its all-null audio-features placeholder, in one transaction.
func (s *Store) CreateCatalogEntry(entry core.CatalogEntry) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO catalog_entries (chart_entry_id, external_track_id, genre, popularity, release_year)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ChartEntryID, entry.ExternalTrackID, entry.Genre, entry.Popularity, entry.ReleaseYear,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert catalog entry: %w", err)
	}
	songID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec("INSERT INTO audio_features (song_id) VALUES (?)", songID); err != nil {
		return 0, fmt.Errorf("failed to insert audio features placeholder: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catalog entry: %w", err)
	}
	return songID, nil
}

// GetCatalogEntryByChartEntry returns the catalog entry for a chart entry,
// or nil when the chart entry is still unresolved.
func (s *Store) GetCatalogEntryByChartEntry(chartEntryID int64) (*core.CatalogEntry, error) {
	var entry core.CatalogEntry
	err := s.db.QueryRow(
		`SELECT song_id, chart_entry_id, external_track_id, genre, popularity, release_year
		 FROM catalog_entries WHERE chart_entry_id = ?`,
		chartEntryID,
	).Scan(&entry.SongID, &entry.ChartEntryID, &entry.ExternalTrackID,
		&entry.Genre, &entry.Popularity, &entry.ReleaseYear)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
	}
	return &entry, nil
}

// ResolvedSongs returns every catalog entry joined with its chart title and
// artist name, as consumed by the bulk merge.
func (s *Store) ResolvedSongs() ([]core.ChartSong, []int64, error) {
	rows, err := s.db.Query(
		`SELECT cat.song_id, ce.id, ce.song_title, a.artist_name
		 FROM catalog_entries cat
		 JOIN chart_entries ce ON ce.id = cat.chart_entry_id
		 JOIN artists a ON a.artist_id = ce.artist_id
		 ORDER BY cat.song_id ASC`,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query resolved songs: %w", err)
	}
	defer rows.Close()

	var songs []core.ChartSong
	var songIDs []int64
	for rows.Next() {
		var song core.ChartSong
		var songID int64
		if err := rows.Scan(&songID, &song.ChartEntryID, &song.SongTitle, &song.ArtistName); err != nil {
			return nil, nil, fmt.Errorf("failed to scan resolved song: %w", err)
		}
		songs = append(songs, song)
		songIDs = append(songIDs, songID)
	}
	return songs, songIDs, rows.Err()
}

// UpsertAudioFeatures applies incoming acoustic measures keyed on song_id.
// Incoming null fields never clear existing values.
func (s *Store) UpsertAudioFeatures(f core.AudioFeatures) error {
	_, err := s.db.Exec(
		`INSERT INTO audio_features (song_id, valence, energy, danceability, tempo, acousticness, instrumentalness)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (song_id) DO UPDATE SET
			valence          = COALESCE(excluded.valence, valence),
			energy           = COALESCE(excluded.energy, energy),
			danceability     = COALESCE(excluded.danceability, danceability),
			tempo            = COALESCE(excluded.tempo, tempo),
			acousticness     = COALESCE(excluded.acousticness, acousticness),
			instrumentalness = COALESCE(excluded.instrumentalness, instrumentalness)`,
		f.SongID, f.Valence, f.Energy, f.Danceability, f.Tempo, f.Acousticness, f.Instrumentalness,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert audio features: %w", err)
	}
	return nil
}

// GetAudioFeatures returns the audio-features row for a song, or nil when
// none exists.
func (s *Store) GetAudioFeatures(songID int64) (*core.AudioFeatures, error) {
	var f core.AudioFeatures
	err := s.db.QueryRow(
		`SELECT id, song_id, valence, energy, danceability, tempo, acousticness, instrumentalness
		 FROM audio_features WHERE song_id = ?`,
		songID,
	).Scan(&f.ID, &f.SongID, &f.Valence, &f.Energy, &f.Danceability,
		&f.Tempo, &f.Acousticness, &f.Instrumentalness)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audio features: %w", err)
	}
	return &f, nil
}

// SongsWithoutPopularity returns up to quota resolved songs that have no
// popularity observation yet, ordered by song id ascending.
func (s *Store) SongsWithoutPopularity(quota int) ([]core.ChartSong, []int64, error) {
	rows, err := s.db.Query(
		`SELECT cat.song_id, ce.id, ce.song_title, a.artist_name
		 FROM catalog_entries cat
		 JOIN chart_entries ce ON ce.id = cat.chart_entry_id
		 JOIN artists a ON a.artist_id = ce.artist_id
		 WHERE cat.song_id NOT IN (SELECT song_id FROM popularity_observations)
		 ORDER BY cat.song_id ASC
		 LIMIT ?`,
		quota,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query songs without popularity: %w", err)
	}
	defer rows.Close()

	var songs []core.ChartSong
	var songIDs []int64
	for rows.Next() {
		var song core.ChartSong
		var songID int64
		if err := rows.Scan(&songID, &song.ChartEntryID, &song.SongTitle, &song.ArtistName); err != nil {
			return nil, nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
		songIDs = append(songIDs, songID)
	}
	return songs, songIDs, rows.Err()
}

// AppendPopularityObservation records one popularity snapshot for a song.
// Observations are append-only; multiple rows per song form a time series.
func (s *Store) AppendPopularityObservation(obs core.PopularityObservation) error {
	_, err := s.db.Exec(
		`INSERT INTO popularity_observations (song_id, listener_count, playcount)
		 VALUES (?, ?, ?)`,
		obs.SongID, obs.ListenerCount, obs.Playcount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert popularity observation: %w", err)
	}
	return nil
}

// DeleteChartEntry removes a chart entry; catalog, feature, and popularity
// rows go with it via cascade.
func (s *Store) DeleteChartEntry(id int64) error {
	if _, err := s.db.Exec("DELETE FROM chart_entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete chart entry: %w", err)
	}
	return nil
}
