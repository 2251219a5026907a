// Package lastfm is a thin client for the track.getInfo popularity
// endpoint.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Popularity is one listener/playcount snapshot for a track.
type Popularity struct {
	Listeners int64
	Playcount int64
}

// Client talks to the Last.fm web service.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a client. A missing API key is a setup failure.
func New(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("lastfm api key is required (set LASTFM_API_KEY)")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type trackInfoResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Track   *struct {
		Listeners string `json:"listeners"`
		Playcount string `json:"playcount"`
	} `json:"track"`
}

// GetTrackPopularity fetches listener and play counts for a track. A track
// the service does not know, an error payload, or missing counts all
// return (nil, nil); only transport failures are errors.
func (c *Client) GetTrackPopularity(ctx context.Context, title, artist string) (*Popularity, error) {
	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artist)
	params.Set("track", title)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build track.getInfo request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track info: %w", err)
	}
	defer resp.Body.Close()

	var result trackInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode track info: %w", err)
	}

	// The service reports unknown tracks as an error payload with 200.
	if result.Error != 0 || result.Track == nil {
		return nil, nil
	}

	listeners, err := strconv.ParseInt(result.Track.Listeners, 10, 64)
	if err != nil {
		return nil, nil
	}
	playcount, err := strconv.ParseInt(result.Track.Playcount, 10, 64)
	if err != nil {
		return nil, nil
	}

	return &Popularity{Listeners: listeners, Playcount: playcount}, nil
}
