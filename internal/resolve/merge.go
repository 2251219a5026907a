package resolve

import (
	"fmt"

	"chartmood/internal/core"
	"chartmood/internal/logger"
	"chartmood/internal/normalize"
	"chartmood/internal/store"
)

// MergeSummary reports what one bulk merge did.
type MergeSummary struct {
	ReferenceRows int
	Deduped       int
	Applied       int
	Unmatched     int
}

type mergeKey struct {
	title  string
	artist string
}

// BulkMerge backfills audio features from the reference dataset into the
// existing catalog entries. Reference rows are deduplicated per normalized
// key before merging, keeping the highest-popularity row, so the join is a
// strict one-to-one key-to-song mapping. Rows with a null valence carry no
// data and are never applied. Applying the same reference rows twice
// leaves the table unchanged.
func BulkMerge(s *store.Store, refRows []core.ReferenceRow) (MergeSummary, error) {
	log := logger.Get()
	summary := MergeSummary{ReferenceRows: len(refRows)}

	best := make(map[mergeKey]core.ReferenceRow)
	for _, row := range refRows {
		if row.Valence == nil {
			continue
		}
		key := mergeKey{
			title:  normalize.TitleKey(row.Title),
			artist: normalize.ArtistKey(row.Artist),
		}
		if key.title == "" {
			continue
		}
		current, ok := best[key]
		if !ok || popularityOf(row) > popularityOf(current) {
			best[key] = row
		}
	}
	summary.Deduped = len(best)

	songs, songIDs, err := s.ResolvedSongs()
	if err != nil {
		return summary, fmt.Errorf("failed to load resolved songs: %w", err)
	}

	for i, song := range songs {
		key := mergeKey{
			title:  normalize.TitleKey(song.SongTitle),
			artist: normalize.ArtistKey(song.ArtistName),
		}
		row, ok := best[key]
		if !ok {
			summary.Unmatched++
			continue
		}

		features := core.AudioFeatures{
			SongID:           songIDs[i],
			Valence:          row.Valence,
			Energy:           row.Energy,
			Danceability:     row.Danceability,
			Tempo:            row.Tempo,
			Acousticness:     row.Acousticness,
			Instrumentalness: row.Instrumentalness,
		}
		if err := s.UpsertAudioFeatures(features); err != nil {
			return summary, fmt.Errorf("failed to upsert features for song %d: %w", songIDs[i], err)
		}

		log.Debug().
			Int64("song_id", songIDs[i]).
			Str("title", song.SongTitle).
			Msg("applied reference audio features")
		summary.Applied++
	}

	return summary, nil
}

func popularityOf(row core.ReferenceRow) float64 {
	if row.Popularity == nil {
		return -1
	}
	return *row.Popularity
}
