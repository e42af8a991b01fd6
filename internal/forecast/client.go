package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/discord-bot-collab/weatherbot/internal/geo"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// dailyFields is the daily field list requested from Open-Meteo.
const dailyFields = "temperature_2m_max,temperature_2m_min,weathercode,uv_index_max,precipitation_probability_max"

// DailyForecast is one day of forecast data. Produced fresh per fetch,
// never persisted.
type DailyForecast struct {
	Date          string  `json:"date"` // ISO calendar date, e.g. "2026-03-14"
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	WeatherCode   int     `json:"weather_code"`
	WeatherText   string  `json:"weather_text"`
	UVIndex       float64 `json:"uv_index"`
	Precipitation int     `json:"precipitation"` // probability, percent
}

// Client fetches daily forecasts from the Open-Meteo API.
// Every call is a live fetch; the daily scheduler already rate-limits usage.
type Client struct {
	client  *http.Client
	baseURL string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the forecast endpoint (used by tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a forecast client using the given HTTP client.
func NewClient(client *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		client:  client,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the daily forecasts for a coordinate, typically seven days
// as determined by the server. A single GET, no retry: failures propagate to
// the caller, which skips the cycle.
func (c *Client) Fetch(ctx context.Context, coord geo.Coordinate) ([]DailyForecast, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", coord.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", coord.Longitude))
	values.Set("daily", dailyFields)
	values.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch forecast: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Daily struct {
			Time                        []string  `json:"time"`
			Temperature2mMax            []float64 `json:"temperature_2m_max"`
			Temperature2mMin            []float64 `json:"temperature_2m_min"`
			WeatherCode                 []int     `json:"weathercode"`
			UVIndexMax                  []float64 `json:"uv_index_max"`
			PrecipitationProbabilityMax []int     `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	// The daily arrays are parallel-indexed; a well-formed response has them
	// all the same length, but we only trust the shortest.
	d := payload.Daily
	n := len(d.Time)
	for _, l := range []int{
		len(d.Temperature2mMax),
		len(d.Temperature2mMin),
		len(d.WeatherCode),
		len(d.UVIndexMax),
		len(d.PrecipitationProbabilityMax),
	} {
		if l < n {
			n = l
		}
	}

	forecasts := make([]DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		forecasts = append(forecasts, DailyForecast{
			Date:          d.Time[i],
			TempMax:       d.Temperature2mMax[i],
			TempMin:       d.Temperature2mMin[i],
			WeatherCode:   d.WeatherCode[i],
			WeatherText:   WeatherText(d.WeatherCode[i]),
			UVIndex:       d.UVIndexMax[i],
			Precipitation: d.PrecipitationProbabilityMax[i],
		})
	}
	return forecasts, nil
}
