package spotify

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

	client, err := New("id", "secret", 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	client.tokenURL = server.URL + "/api/token"
	client.apiURL = server.URL + "/v1"
	return client
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New("", "secret", 0); err == nil {
		t.Error("Expected an error for a missing client id")
	}
	if _, err := New("id", "", 0); err == nil {
		t.Error("Expected an error for a missing client secret")
	}
}

func TestSearchTrack(t *testing.T) {
	tokenCalls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			tokenCalls++
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
		case "/v1/search":
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("Expected bearer token on search, got %q", r.Header.Get("Authorization"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"tracks":{"items":[
				{"id":"X1","popularity":80,"album":{"release_date":"2021-05-01"}}
			]}}`))
		default:
			t.Errorf("Unexpected request path %s", r.URL.Path)
		}
	})

	track, err := client.SearchTrack(context.Background(), "Song", "Band")
	if err != nil {
		t.Fatalf("SearchTrack failed: %v", err)
	}
	if track == nil {
		t.Fatal("Expected a track")
	}
	if track.ID != "X1" || track.Popularity != 80 || track.ReleaseDate != "2021-05-01" {
		t.Errorf("Unexpected track: %+v", track)
	}

	// Second search reuses the cached token.
	if _, err := client.SearchTrack(context.Background(), "Other", "Band"); err != nil {
		t.Fatalf("SearchTrack failed: %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("Expected 1 token request across searches, got %d", tokenCalls)
	}
}

func TestSearchTrack_NoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/token":
			_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
		default:
			_, _ = w.Write([]byte(`{"tracks":{"items":[]}}`))
		}
	})

	track, err := client.SearchTrack(context.Background(), "Nothing", "Nobody")
	if err != nil {
		t.Fatalf("SearchTrack failed: %v", err)
	}
	if track != nil {
		t.Errorf("Expected nil for no match, got %+v", track)
	}
}

func TestSearchTrack_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})

	if _, err := client.SearchTrack(context.Background(), "Song", "Band"); err == nil {
		t.Error("Expected an error for a non-200 search response")
	}
}
