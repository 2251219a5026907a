package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("key", server.URL, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New("", "https://example.com", 0); err == nil {
		t.Error("Expected an error for a missing api key")
	}
}

func TestGetTrackPopularity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("method") != "track.getInfo" {
			t.Errorf("Expected track.getInfo method, got %q", r.URL.Query().Get("method"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"track":{"listeners":"123456","playcount":"7890123"}}`))
	})

	pop, err := client.GetTrackPopularity(context.Background(), "Song", "Band")
	if err != nil {
		t.Fatalf("GetTrackPopularity failed: %v", err)
	}
	if pop == nil {
		t.Fatal("Expected popularity data")
	}
	if pop.Listeners != 123456 || pop.Playcount != 7890123 {
		t.Errorf("Unexpected popularity: %+v", pop)
	}
}

func TestGetTrackPopularity_ErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":6,"message":"Track not found"}`))
	})

	pop, err := client.GetTrackPopularity(context.Background(), "Nothing", "Nobody")
	if err != nil {
		t.Fatalf("GetTrackPopularity failed: %v", err)
	}
	if pop != nil {
		t.Errorf("Expected nil for an error payload, got %+v", pop)
	}
}

func TestGetTrackPopularity_MalformedCounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"track":{"listeners":"many","playcount":"7"}}`))
	})

	pop, err := client.GetTrackPopularity(context.Background(), "Song", "Band")
	if err != nil {
		t.Fatalf("Malformed counts should not error: %v", err)
	}
	if pop != nil {
		t.Errorf("Expected nil for malformed counts, got %+v", pop)
	}
}
