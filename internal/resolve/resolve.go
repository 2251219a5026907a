// Package resolve reconciles the three independently sourced song
// identities: the scraped chart entry, the external catalog entry, and the
// bulk audio-features record. Matching happens on normalized
// (title, artist) keys; identity stays with the owning row's primary key.
package resolve

import (
	"context"
	"fmt"

	"chartmood/internal/core"
	"chartmood/internal/logger"
	"chartmood/internal/normalize"
	"chartmood/internal/store"
)

// Track is the catalog API's view of a matched song.
type Track struct {
	ExternalID  string
	Popularity  int
	ReleaseDate string
}

// LookupFunc finds a catalog match for a (title, artist) pair. A nil Track
// with a nil error means no match, which is expected and common.
type LookupFunc func(ctx context.Context, title, artist string) (*Track, error)

// Summary reports what one resolver pass did.
type Summary struct {
	Processed int
	Matched   int
	Skipped   int
}

// Resolver links unresolved chart entries to the external catalog.
type Resolver struct {
	store  *store.Store
	lookup LookupFunc
}

// New creates a resolver over the given store and catalog lookup.
func New(s *store.Store, lookup LookupFunc) *Resolver {
	return &Resolver{store: s, lookup: lookup}
}

// Run resolves up to quota unresolved chart entries. Lookup misses and
// transient lookup errors skip the single item and continue; re-running
// with the same input never creates a second catalog entry for a chart
// entry, because resolved entries no longer appear in the cursor.
func (r *Resolver) Run(ctx context.Context, quota int) (Summary, error) {
	log := logger.Get()

	songs, err := r.store.UnresolvedChartEntries(quota)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to select unresolved chart entries: %w", err)
	}

	summary := Summary{}
	for _, song := range songs {
		summary.Processed++

		// A title that normalizes to nothing is scrape noise, not a song.
		if normalize.TitleKey(song.SongTitle) == "" {
			log.Warn().
				Str("title", song.SongTitle).
				Msg("title normalizes to empty key, skipping")
			summary.Skipped++
			continue
		}

		track, err := r.lookup(ctx, song.SongTitle, song.ArtistName)
		if err != nil {
			log.Warn().Err(err).
				Str("title", song.SongTitle).
				Str("artist", song.ArtistName).
				Msg("catalog lookup failed, skipping")
			summary.Skipped++
			continue
		}
		if track == nil {
			log.Info().
				Str("title", song.SongTitle).
				Str("artist", song.ArtistName).
				Msg("no catalog match, skipping")
			summary.Skipped++
			continue
		}

		popularity := track.Popularity
		entry := core.CatalogEntry{
			ChartEntryID:    song.ChartEntryID,
			ExternalTrackID: track.ExternalID,
			Popularity:      &popularity,
			ReleaseYear:     ParseReleaseYear(track.ReleaseDate),
		}
		songID, err := r.store.CreateCatalogEntry(entry)
		if err != nil {
			return summary, fmt.Errorf("failed to create catalog entry for chart entry %d: %w",
				song.ChartEntryID, err)
		}

		log.Info().
			Int64("song_id", songID).
			Str("title", song.SongTitle).
			Str("artist", song.ArtistName).
			Int("popularity", track.Popularity).
			Msg("resolved chart entry")
		summary.Matched++
	}

	return summary, nil
}

// ParseReleaseYear extracts the year from an ISO-ish date string. The
// result is nil unless the first four characters are all digits.
func ParseReleaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return nil
		}
		year = year*10 + int(c-'0')
	}
	return &year
}
