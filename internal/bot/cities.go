package bot

import (
	"sort"

	"github.com/discord-bot-collab/weatherbot/internal/geo"
)

// cities is the fixed list offered by the /weather dropdown. Coordinates are
// pinned so the quick-look command never touches the geocoder.
var cities = map[string]geo.Coordinate{
	"Aberdeen":    {Latitude: 57.1437, Longitude: -2.0981},
	"Aberystwyth": {Latitude: 52.4155, Longitude: -4.0829},
	"Belfast":     {Latitude: 54.5968, Longitude: -5.9254},
	"Birmingham":  {Latitude: 52.4814, Longitude: -1.8998},
	"Bristol":     {Latitude: 51.4552, Longitude: -2.5966},
	"Cambridge":   {Latitude: 52.2, Longitude: 0.1167},
	"Cardiff":     {Latitude: 51.48, Longitude: -3.18},
	"Edinburgh":   {Latitude: 55.9521, Longitude: -3.1965},
	"Exeter":      {Latitude: 50.7236, Longitude: -3.5275},
	"Glasgow":     {Latitude: 55.8651, Longitude: -4.2576},
	"Ipswich":     {Latitude: 52.0592, Longitude: 1.1555},
	"Leeds":       {Latitude: 53.7965, Longitude: -1.5478},
	"Liverpool":   {Latitude: 53.4106, Longitude: -2.9779},
	"London":      {Latitude: 51.5085, Longitude: -0.1257},
	"Maidstone":   {Latitude: 51.2667, Longitude: 0.5167},
	"Manchester":  {Latitude: 53.4809, Longitude: -2.2374},
	"Newcastle":   {Latitude: 54.218, Longitude: -5.8898},
	"Newquay":     {Latitude: 50.4156, Longitude: -5.0732},
	"Norwich":     {Latitude: 52.6278, Longitude: 1.2983},
	"Nottingham":  {Latitude: 52.9536, Longitude: -1.1505},
	"Oxford":      {Latitude: 51.7522, Longitude: -1.256},
	"Penzance":    {Latitude: 50.1186, Longitude: -5.5371},
	"Southampton": {Latitude: 50.904, Longitude: -1.4043},
	"Swansea":     {Latitude: 51.6208, Longitude: -3.9432},
	"York":        {Latitude: 53.9576, Longitude: -1.0827},
}

// cityNames returns the dropdown labels in alphabetical order.
func cityNames() []string {
	names := make([]string, 0, len(cities))
	for name := range cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
