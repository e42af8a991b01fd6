package forecast

import "strings"

// IconURL maps a weather description to an OpenWeatherMap icon, used as the
// embed thumbnail. Reference: https://openweathermap.org/weather-conditions
func IconURL(weatherText string) string {
	w := strings.ToLower(weatherText)

	switch {
	case hasAny(w, "thunder", "storm"):
		return "https://openweathermap.org/img/wn/11d@2x.png"
	case hasAny(w, "snow", "sleet", "ice"):
		return "https://openweathermap.org/img/wn/13d@2x.png"
	case hasAny(w, "heavy rain", "torrential"):
		return "https://openweathermap.org/img/wn/10d@2x.png"
	case hasAny(w, "shower"):
		return "https://openweathermap.org/img/wn/09d@2x.png"
	case hasAny(w, "slight rain", "light rain", "rain"):
		return "https://openweathermap.org/img/wn/10d@2x.png"
	case hasAny(w, "drizzle"):
		return "https://openweathermap.org/img/wn/09d@2x.png"
	case hasAny(w, "fog", "mist", "haze"):
		return "https://openweathermap.org/img/wn/50d@2x.png"
	case hasAny(w, "overcast", "cloud"):
		return "https://openweathermap.org/img/wn/03d@2x.png"
	case hasAny(w, "clear", "sun"):
		return "https://openweathermap.org/img/wn/01d@2x.png"
	default:
		return "https://openweathermap.org/img/wn/02d@2x.png"
	}
}

// hasAny returns true if s contains any of the substrings.
func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
