package forecast

// WMO weather interpretation codes used by Open-Meteo.
// https://www.nodc.noaa.gov/archive/arc0021/0002199/1.1/data/0-data/HTML/WMO-CODE/WMO4677.HTM
var weatherCodes = map[int]string{
	0:  "Clear sky ☀️",
	1:  "Mainly clear 🌤️",
	2:  "Partly cloudy ⛅",
	3:  "Overcast ☁️",
	45: "Fog 🌫️",
	48: "Freezing Fog ❄️",
	51: "Light drizzle 🌦️",
	53: "Moderate drizzle 🌦️",
	55: "Dense drizzle 🌧️",
	61: "Slight rain 🌧️",
	63: "Moderate rain 🌧️",
	65: "Heavy rain 🌧️",
	71: "Slight snow 🌨️",
	73: "Moderate snow 🌨️",
	75: "Heavy snow ❄️",
	80: "Rain showers 🌦️",
	81: "Moderate showers 🌧️",
	82: "Violent showers ⛈️",
	95: "Thunderstorm ⛈️",
	96: "Thunderstorm with hail ⛈️",
}

// WeatherText maps a WMO weather code to a human-readable description.
// Codes absent from the table map to "Unknown" rather than failing.
func WeatherText(code int) string {
	if text, ok := weatherCodes[code]; ok {
		return text
	}
	return "Unknown"
}
