package forecast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/discord-bot-collab/weatherbot/internal/geo"
)

// TestFetchZipsShortestArray verifies the output length equals the shortest
// daily field array when the response arrays are unevenly sized.
func TestFetchZipsShortestArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("timezone"); got != "auto" {
			t.Errorf("unexpected timezone parameter: %q", got)
		}
		w.Write([]byte(`{"daily":{
			"time":["2026-03-14","2026-03-15","2026-03-16"],
			"temperature_2m_max":[12.4,13.1,11.0],
			"temperature_2m_min":[4.2,5.5],
			"weathercode":[0,61,95],
			"uv_index_max":[3.4,2.1,1.9],
			"precipitation_probability_max":[10,80,95]
		}}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), WithBaseURL(server.URL))
	days, err := c.Fetch(context.Background(), geo.Coordinate{Latitude: 50.7236, Longitude: -3.5275})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	first := days[0]
	if first.Date != "2026-03-14" || first.TempMax != 12.4 || first.TempMin != 4.2 {
		t.Fatalf("unexpected first day: %+v", first)
	}
	if first.WeatherText != "Clear sky ☀️" {
		t.Fatalf("unexpected weather text: %q", first.WeatherText)
	}
	if days[1].WeatherText != "Slight rain 🌧️" {
		t.Fatalf("unexpected weather text: %q", days[1].WeatherText)
	}
}

// TestFetchUnknownWeatherCode verifies codes absent from the WMO table map
// to "Unknown" instead of failing.
func TestFetchUnknownWeatherCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily":{
			"time":["2026-03-14"],
			"temperature_2m_max":[12.4],
			"temperature_2m_min":[4.2],
			"weathercode":[42],
			"uv_index_max":[3.4],
			"precipitation_probability_max":[10]
		}}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), WithBaseURL(server.URL))
	days, err := c.Fetch(context.Background(), geo.Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].WeatherText != "Unknown" {
		t.Fatalf("expected Unknown, got %q", days[0].WeatherText)
	}
}

// TestFetchServerError verifies a non-200 response propagates as an error.
func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.Client(), WithBaseURL(server.URL))
	if _, err := c.Fetch(context.Background(), geo.Coordinate{}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWeatherTextTable(t *testing.T) {
	if got := WeatherText(95); got != "Thunderstorm ⛈️" {
		t.Fatalf("unexpected text for 95: %q", got)
	}
	if got := WeatherText(999); got != "Unknown" {
		t.Fatalf("unexpected text for 999: %q", got)
	}
}
