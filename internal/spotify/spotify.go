// Package spotify is a thin client for the catalog API using the
// client-credentials flow. The core resolver only sees it through the
// resolve.LookupFunc it exposes.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultAPIURL   = "https://api.spotify.com/v1"
)

// Track is the subset of a catalog search hit the pipeline stores.
type Track struct {
	ID          string
	Popularity  int
	ReleaseDate string
}

// Client talks to the catalog API with a cached bearer token.
type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client

	accessToken string
	tokenExpiry time.Time
}

// New creates a client. Missing credentials are a setup failure; nothing
// downstream can recover from them.
func New(clientID, clientSecret string, timeout time.Duration) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client id and secret are required (set SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)")
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getAccessToken returns a cached token, refreshing 60s before expiry.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			ID         string `json:"id"`
			Popularity int    `json:"popularity"`
			Album      struct {
				ReleaseDate string `json:"release_date"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

// SearchTrack looks up the best catalog match for a (title, artist) pair.
// No match returns (nil, nil); that outcome is expected and common.
func (c *Client) SearchTrack(ctx context.Context, title, artist string) (*Track, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("track:%s artist:%s", title, artist))
	query.Set("type", "track")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search failed: status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(result.Tracks.Items) == 0 {
		return nil, nil
	}

	item := result.Tracks.Items[0]
	return &Track{
		ID:          item.ID,
		Popularity:  item.Popularity,
		ReleaseDate: item.Album.ReleaseDate,
	}, nil
}
