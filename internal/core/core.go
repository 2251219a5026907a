// Package core contains the domain entities shared across the pipeline
// stages. Identity is always the owning row's primary key; normalized
// title/artist keys are only a lookup aid for cross-source matching.
package core

// Artist is a deduplicated artist name, created on first sighting.
type Artist struct {
	ID   int64
	Name string
}

// ChartEntry is one scraped chart listing for a given chart week.
type ChartEntry struct {
	ID        int64
	SongTitle string
	ArtistID  int64
	Genre     *string
	ChartDate string
}

// ChartSong is a chart entry joined with its artist name, as consumed by
// the resolver.
type ChartSong struct {
	ChartEntryID int64
	SongTitle    string
	ArtistName   string
}

// CatalogEntry links a chart entry to the external music catalog. At most
// one exists per chart entry once resolved.
type CatalogEntry struct {
	SongID          int64
	ChartEntryID    int64
	ExternalTrackID string
	Genre           *string
	Popularity      *int
	ReleaseYear     *int
}

// AudioFeatures holds the acoustic measures for one catalog entry. All
// measures are nullable; rows start all-null and are backfilled by the
// bulk merge.
type AudioFeatures struct {
	ID               int64
	SongID           int64
	Valence          *float64
	Energy           *float64
	Danceability     *float64
	Tempo            *float64
	Acousticness     *float64
	Instrumentalness *float64
}

// PopularityObservation is one append-only popularity snapshot for a song.
type PopularityObservation struct {
	ID            int64
	SongID        int64
	ListenerCount *int64
	Playcount     *int64
}

// SurveyRow is one raw record from the public-health survey feed.
type SurveyRow struct {
	Group     string
	State     string
	Indicator string
	WeekStart string
	Value     *float64
}

// WeeklyTrend is the national weekly aggregate of the two tracked
// indicators, upserted on week.
type WeeklyTrend struct {
	Week              string
	AnxietyPercent    *float64
	DepressionPercent *float64
}

// ReferenceRow is one row of the bulk audio-features reference file.
type ReferenceRow struct {
	Title            string
	Artist           string
	Popularity       *float64
	Valence          *float64
	Energy           *float64
	Danceability     *float64
	Tempo            *float64
	Acousticness     *float64
	Instrumentalness *float64
}
