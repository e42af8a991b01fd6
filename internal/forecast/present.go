package forecast

import (
	"fmt"
	"math"
	"time"
)

// MessageFragment is the platform-neutral rendering of one forecast day.
// The chat adapter turns fragments into whatever rich-message format the
// platform supports.
type MessageFragment struct {
	Title         string
	Thumbnail     string
	DayTemp       string
	NightTemp     string
	Weather       string
	UVIndex       string
	Precipitation string
}

// Present renders forecasts into one message fragment per day. Temperatures
// and UV index round to the nearest whole number, precipitation probability
// to the nearest multiple of 5. Pure: the only failure mode is a malformed
// date string.
func Present(location string, forecasts []DailyForecast) ([]MessageFragment, error) {
	fragments := make([]MessageFragment, 0, len(forecasts))
	for _, day := range forecasts {
		dt, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return nil, fmt.Errorf("parse forecast date %q: %w", day.Date, err)
		}

		fragments = append(fragments, MessageFragment{
			Title:         fmt.Sprintf("Weather Forecast: %s — %s %s", location, dt.Format("Mon"), dt.Format("02/01")),
			Thumbnail:     IconURL(day.WeatherText),
			DayTemp:       fmt.Sprintf("%d°C", int(math.Round(day.TempMax))),
			NightTemp:     fmt.Sprintf("%d°C", int(math.Round(day.TempMin))),
			Weather:       day.WeatherText,
			UVIndex:       fmt.Sprintf("%d", int(math.Round(day.UVIndex))),
			Precipitation: fmt.Sprintf("%d%%", roundToFive(day.Precipitation)),
		})
	}
	return fragments, nil
}

// roundToFive rounds a percentage to the nearest multiple of 5.
func roundToFive(pct int) int {
	return 5 * int(math.Round(float64(pct)/5))
}
