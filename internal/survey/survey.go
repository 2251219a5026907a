// Package survey fetches the public-health pulse survey feed and folds it
// into weekly national trend records.
package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"chartmood/internal/core"
)

const (
	// The two indicators this pipeline tracks.
	IndicatorAnxiety    = "Symptoms of Anxiety Disorder"
	IndicatorDepression = "Symptoms of Depressive Disorder"

	nationalGroup = "National Estimate"
	nationalState = "United States"
)

// Client talks to the Socrata-style survey endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given feed URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type feedRow struct {
	Group               string `json:"group"`
	State               string `json:"state"`
	Indicator           string `json:"indicator"`
	TimePeriodStartDate string `json:"time_period_start_date"`
	Value               string `json:"value"`
}

// FetchRows fetches up to limit raw rows starting at offset, keeping only
// the anxiety/depression indicators. Rows with an unparseable value are
// dropped; date strings keep the part before "T".
func (c *Client) FetchRows(ctx context.Context, limit, offset int) ([]core.SurveyRow, error) {
	params := url.Values{}
	params.Set("$limit", strconv.Itoa(limit))
	if offset > 0 {
		params.Set("$offset", strconv.Itoa(offset))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build survey request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch survey feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("survey feed returned status %d", resp.StatusCode)
	}

	var raw []feedRow
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode survey feed: %w", err)
	}

	return FilterRows(raw), nil
}

// FilterRows converts raw feed rows into survey rows, applying the
// indicator filter and field normalization.
func FilterRows(raw []feedRow) []core.SurveyRow {
	var rows []core.SurveyRow
	for _, r := range raw {
		if r.Indicator != IndicatorAnxiety && r.Indicator != IndicatorDepression {
			continue
		}

		week := r.TimePeriodStartDate
		if i := strings.Index(week, "T"); i >= 0 {
			week = week[:i]
		}
		if week == "" {
			continue
		}

		var value *float64
		if r.Value != "" {
			v, err := strconv.ParseFloat(r.Value, 64)
			if err != nil {
				continue
			}
			value = &v
		}

		rows = append(rows, core.SurveyRow{
			Group:     r.Group,
			State:     r.State,
			Indicator: r.Indicator,
			WeekStart: week,
			Value:     value,
		})
	}
	return rows
}

// WeeklyTrends folds national-estimate rows into one record per week,
// sorted by week. Weeks where neither indicator has a value are dropped.
func WeeklyTrends(rows []core.SurveyRow) []core.WeeklyTrend {
	weeks := make(map[string]*core.WeeklyTrend)
	for _, row := range rows {
		if row.Group != nationalGroup || row.State != nationalState {
			continue
		}
		if row.Value == nil {
			continue
		}

		trend, ok := weeks[row.WeekStart]
		if !ok {
			trend = &core.WeeklyTrend{Week: row.WeekStart}
			weeks[row.WeekStart] = trend
		}

		value := *row.Value
		switch row.Indicator {
		case IndicatorAnxiety:
			trend.AnxietyPercent = &value
		case IndicatorDepression:
			trend.DepressionPercent = &value
		}
	}

	var trends []core.WeeklyTrend
	for _, trend := range weeks {
		if trend.AnxietyPercent == nil && trend.DepressionPercent == nil {
			continue
		}
		trends = append(trends, *trend)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Week < trends[j].Week })
	return trends
}
