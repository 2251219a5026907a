// Package scrape fetches and parses weekly chart pages into chart entries.
package scrape

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Entry is one song listing parsed from a chart page.
type Entry struct {
	SongTitle  string
	ArtistName string
	ChartDate  string
}

// Scraper fetches chart pages over HTTP.
type Scraper struct {
	userAgent string
	client    *http.Client
}

// New creates a scraper with the given User-Agent and request timeout.
func New(userAgent string, timeout time.Duration) *Scraper {
	return &Scraper{
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// FetchChart downloads a chart page and parses its entries. The chart week
// comes from the trailing URL path segment.
func (s *Scraper) FetchChart(chartURL string) ([]Entry, error) {
	req, err := http.NewRequest(http.MethodGet, chartURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart %s: %w", chartURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch chart %s: status code %d", chartURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart HTML: %w", err)
	}

	return ParseChart(doc, ChartDateFromURL(chartURL)), nil
}

// ParseChart extracts song listings from a parsed chart page. Entries
// without a title heading are skipped; a missing artist label falls back
// to "Unknown Artist".
func ParseChart(doc *goquery.Document, chartDate string) []Entry {
	var entries []Entry

	doc.Find("li.o-chart-results-list__item").Each(func(i int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("h3#title-of-a-story").First().Text())
		if title == "" {
			return
		}

		artist := strings.TrimSpace(item.Find("span.c-label").First().Text())
		if artist == "" {
			artist = "Unknown Artist"
		}

		entries = append(entries, Entry{
			SongTitle:  title,
			ArtistName: artist,
			ChartDate:  chartDate,
		})
	})

	return entries
}

// ChartDateFromURL extracts the chart week from a chart URL, e.g.
// https://www.billboard.com/charts/hot-100/2020-04-25/ -> "2020-04-25".
func ChartDateFromURL(chartURL string) string {
	parsed, err := url.Parse(chartURL)
	if err != nil {
		return "unknown-date"
	}
	path := strings.TrimRight(parsed.Path, "/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "unknown-date"
	}
	return parts[len(parts)-1]
}
