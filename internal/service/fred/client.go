// Package fred implements the SeriesSource capability against the FRED
// (Federal Reserve Economic Data) REST API.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
package fred

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	drepo "CurveWatch/internal/domain/repository"
	"CurveWatch/internal/service/ratelimit"
	xhttp "CurveWatch/pkg/http"
	"CurveWatch/pkg/util"
)

const limiterKey = "fred"

// Client implements a SeriesSource backed by the FRED REST API.
type Client struct {
	apiKey     string
	baseURL    string
	ratePerMin float64

	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// New creates a new FRED SeriesSource.
func New(apiKey, baseURL string, timeout time.Duration, ratePerMin int) drepo.SeriesSource {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		ratePerMin: float64(ratePerMin),
		http:       xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:    ratelimit.New(),
	}
}

// observationsResponse is the series/observations payload. Values arrive as
// strings; "." marks a date with no observation.
type observationsResponse struct {
	Count        int           `json:"count"`
	Observations []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// FetchSeries retrieves one series over [start, end], ascending by date.
// Transport and auth failures wrap ErrUnavailable; an empty result is not an error.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) ([]drepo.Observation, error) {
	if err := c.limiter.Wait(ctx, limiterKey, c.ratePerMin, c.ratePerMin/60); err != nil {
		return nil, fmt.Errorf("fred rate limit: %w", err)
	}

	var resp observationsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/series/observations",
		Headers: map[string]string{
			"Accept": "application/json",
		},
		QueryParams: map[string]string{
			"series_id":         seriesID,
			"api_key":           c.apiKey,
			"file_type":         "json",
			"observation_start": util.FormatDate(start),
			"observation_end":   util.FormatDate(end),
		},
	}, &resp)
	if err != nil {
		return nil, classify(seriesID, err)
	}

	points := make([]drepo.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		if o.Value == "." {
			continue // no observation on this date
		}
		date, ok := util.ParseDate(o.Date)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, drepo.Observation{Date: date, Value: v})
	}
	return points, nil
}

// Ping checks connectivity and credentials against the FRED API.
func (c *Client) Ping(ctx context.Context) error {
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/series",
		QueryParams: map[string]string{
			"series_id": "DGS10",
			"api_key":   c.apiKey,
			"file_type": "json",
		},
	}, nil)
	if err != nil {
		return classify("DGS10", err)
	}
	return nil
}

// classify maps client errors onto the domain's unavailable sentinel. Every
// failure mode here is the source being unreachable or rejecting us; "series
// exists but has no data" never reaches this path.
func classify(seriesID string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 400 || se.StatusCode == 403:
			// FRED reports a bad api_key as 400.
			return fmt.Errorf("fred auth rejected for %s: %w: %v", seriesID, drepo.ErrUnavailable, err)
		default:
			return fmt.Errorf("fred status %d for %s: %w", se.StatusCode, seriesID, drepo.ErrUnavailable)
		}
	}
	return fmt.Errorf("fred fetch %s: %w: %v", seriesID, drepo.ErrUnavailable, err)
}
