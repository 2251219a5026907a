package resolve

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chartmood/internal/core"
	"chartmood/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chartmood.db")
	s, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedChartEntry(t *testing.T, s *store.Store, title, artist, week string) {
	t.Helper()
	artistID, err := s.GetOrCreateArtist(artist)
	if err != nil {
		t.Fatalf("GetOrCreateArtist failed: %v", err)
	}
	if _, err := s.InsertChartEntry(title, artistID, nil, week); err != nil {
		t.Fatalf("InsertChartEntry failed: %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestParseReleaseYear(t *testing.T) {
	tests := []struct {
		date string
		want *int
	}{
		{"2021-05-01", intP(2021)},
		{"1999", intP(1999)},
		{"", nil},
		{"20", nil},
		{"20XX-01-01", nil},
		{"abcd-05-01", nil},
	}
	for _, tt := range tests {
		got := ParseReleaseYear(tt.date)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseReleaseYear(%q) = %d, want nil", tt.date, *got)
		case tt.want != nil && got == nil:
			t.Errorf("ParseReleaseYear(%q) = nil, want %d", tt.date, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("ParseReleaseYear(%q) = %d, want %d", tt.date, *got, *tt.want)
		}
	}
}

func intP(v int) *int { return &v }

func TestRun_MatchCreatesOneCatalogEntry(t *testing.T) {
	s := newTestStore(t)
	seedChartEntry(t, s, "Song (Live)", "Band & Friends", "2021-05-01")

	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		return &Track{ExternalID: "X1", Popularity: 80, ReleaseDate: "2021-05-01"}, nil
	}

	summary, err := New(s, lookup).Run(context.Background(), 25)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 || summary.Matched != 1 || summary.Skipped != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	songs, _, err := s.ResolvedSongs()
	if err != nil {
		t.Fatalf("ResolvedSongs failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("Expected 1 resolved song, got %d", len(songs))
	}

	entry, err := s.GetCatalogEntryByChartEntry(songs[0].ChartEntryID)
	if err != nil {
		t.Fatalf("GetCatalogEntryByChartEntry failed: %v", err)
	}
	if entry.ExternalTrackID != "X1" {
		t.Errorf("Expected external id X1, got %s", entry.ExternalTrackID)
	}
	if entry.Popularity == nil || *entry.Popularity != 80 {
		t.Errorf("Expected popularity 80, got %v", entry.Popularity)
	}
	if entry.ReleaseYear == nil || *entry.ReleaseYear != 2021 {
		t.Errorf("Expected release year 2021, got %v", entry.ReleaseYear)
	}

	// Exactly one linked audio-features row, all nulls until backfilled.
	features, err := s.GetAudioFeatures(entry.SongID)
	if err != nil {
		t.Fatalf("GetAudioFeatures failed: %v", err)
	}
	if features == nil {
		t.Fatal("Expected a linked audio-features row")
	}
	if features.Valence != nil || features.Energy != nil {
		t.Error("Features should be null until backfilled")
	}
}

func TestRun_RerunCreatesNoDuplicates(t *testing.T) {
	s := newTestStore(t)
	seedChartEntry(t, s, "Song", "Band", "2021-05-01")

	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		return &Track{ExternalID: "X1", Popularity: 50, ReleaseDate: "2020-01-01"}, nil
	}
	resolver := New(s, lookup)

	if _, err := resolver.Run(context.Background(), 25); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	summary, err := resolver.Run(context.Background(), 25)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if summary.Processed != 0 {
		t.Errorf("Second run should find nothing to process, got %+v", summary)
	}

	stats, _ := s.GetStats()
	if stats.CatalogEntryCount != 1 {
		t.Errorf("Expected 1 catalog entry after re-run, got %d", stats.CatalogEntryCount)
	}
	if stats.FeatureCount != 1 {
		t.Errorf("Expected 1 audio-features row after re-run, got %d", stats.FeatureCount)
	}
}

func TestRun_NotFoundAndErrorsSkipAndContinue(t *testing.T) {
	s := newTestStore(t)
	seedChartEntry(t, s, "Missing", "Nobody", "2021-05-01")
	seedChartEntry(t, s, "Flaky", "Network", "2021-05-01")
	seedChartEntry(t, s, "Found", "Band", "2021-05-01")

	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		switch title {
		case "Missing":
			return nil, nil
		case "Flaky":
			return nil, errors.New("connection reset")
		default:
			return &Track{ExternalID: "ok", Popularity: 10, ReleaseDate: "2019-02-03"}, nil
		}
	}

	summary, err := New(s, lookup).Run(context.Background(), 25)
	if err != nil {
		t.Fatalf("Run should not abort on per-item failures: %v", err)
	}
	if summary.Processed != 3 || summary.Matched != 1 || summary.Skipped != 2 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestRun_RespectsQuota(t *testing.T) {
	s := newTestStore(t)
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		seedChartEntry(t, s, title, "Band", "2021-05-01")
	}

	calls := 0
	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		calls++
		return &Track{ExternalID: title, Popularity: 1, ReleaseDate: "2021-01-01"}, nil
	}

	summary, err := New(s, lookup).Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 2 || calls != 2 {
		t.Errorf("Quota not respected: summary=%+v calls=%d", summary, calls)
	}

	// The next run advances the frontier instead of reprocessing.
	summary, err = New(s, lookup).Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 2 || calls != 4 {
		t.Errorf("Frontier did not advance: summary=%+v calls=%d", summary, calls)
	}

	stats, _ := s.GetStats()
	if stats.CatalogEntryCount != 4 {
		t.Errorf("Expected all 4 entries resolved across runs, got %d", stats.CatalogEntryCount)
	}
}

func TestBulkMerge_DedupKeepsHighestPopularity(t *testing.T) {
	s := newTestStore(t)
	seedChartEntry(t, s, "Shape of You", "Ed Sheeran", "2021-05-01")
	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		return &Track{ExternalID: "X1", Popularity: 80, ReleaseDate: "2017-01-06"}, nil
	}
	if _, err := New(s, lookup).Run(context.Background(), 25); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	refRows := []core.ReferenceRow{
		{Title: "Shape of You", Artist: "Ed Sheeran", Popularity: floatPtr(90), Valence: floatPtr(0.5)},
		{Title: "Shape Of You (Remix)", Artist: "Ed Sheeran feat. Someone", Popularity: floatPtr(95), Valence: floatPtr(0.9)},
	}

	summary, err := BulkMerge(s, refRows)
	if err != nil {
		t.Fatalf("BulkMerge failed: %v", err)
	}
	if summary.Deduped != 1 {
		t.Errorf("Expected both rows to collapse into one key, got %d", summary.Deduped)
	}
	if summary.Applied != 1 {
		t.Errorf("Expected 1 applied row, got %d", summary.Applied)
	}

	_, songIDs, _ := s.ResolvedSongs()
	features, _ := s.GetAudioFeatures(songIDs[0])
	if features.Valence == nil || *features.Valence != 0.9 {
		t.Errorf("Expected the popularity-95 row's valence 0.9, got %v", features.Valence)
	}
}

func TestBulkMerge_NullValenceNeverApplied(t *testing.T) {
	s := newTestStore(t)
	seedChartEntry(t, s, "Song", "Band", "2021-05-01")
	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		return &Track{ExternalID: "X1", Popularity: 80, ReleaseDate: "2021-05-01"}, nil
	}
	if _, err := New(s, lookup).Run(context.Background(), 25); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	_, songIDs, _ := s.ResolvedSongs()
	if err := s.UpsertAudioFeatures(core.AudioFeatures{SongID: songIDs[0], Valence: floatPtr(0.7)}); err != nil {
		t.Fatalf("UpsertAudioFeatures failed: %v", err)
	}

	// A null-valence reference row means "no data", not "clear data".
	refRows := []core.ReferenceRow{
		{Title: "Song", Artist: "Band", Popularity: floatPtr(99), Energy: floatPtr(0.3)},
	}
	summary, err := BulkMerge(s, refRows)
	if err != nil {
		t.Fatalf("BulkMerge failed: %v", err)
	}
	if summary.Applied != 0 {
		t.Errorf("Null-valence row should not apply, got %+v", summary)
	}

	features, _ := s.GetAudioFeatures(songIDs[0])
	if features.Valence == nil || *features.Valence != 0.7 {
		t.Errorf("Existing valence was clobbered: %v", features.Valence)
	}
}

func TestBulkMerge_Idempotent(t *testing.T) {
	s := newTestStore(t)
	seedChartEntry(t, s, "Song", "Band", "2021-05-01")
	lookup := func(ctx context.Context, title, artist string) (*Track, error) {
		return &Track{ExternalID: "X1", Popularity: 80, ReleaseDate: "2021-05-01"}, nil
	}
	if _, err := New(s, lookup).Run(context.Background(), 25); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	refRows := []core.ReferenceRow{
		{
			Title: "Song", Artist: "Band", Popularity: floatPtr(50),
			Valence: floatPtr(0.6), Energy: floatPtr(0.4), Tempo: floatPtr(118),
		},
	}

	if _, err := BulkMerge(s, refRows); err != nil {
		t.Fatalf("First merge failed: %v", err)
	}
	if _, err := BulkMerge(s, refRows); err != nil {
		t.Fatalf("Second merge failed: %v", err)
	}

	stats, _ := s.GetStats()
	if stats.FeatureCount != 1 {
		t.Errorf("Merge twice should leave 1 features row, got %d", stats.FeatureCount)
	}

	_, songIDs, _ := s.ResolvedSongs()
	features, _ := s.GetAudioFeatures(songIDs[0])
	if *features.Valence != 0.6 || *features.Energy != 0.4 || *features.Tempo != 118 {
		t.Errorf("Unexpected feature values after repeated merge: %+v", features)
	}
}
