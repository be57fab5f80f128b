package weather

import (
	"context"
	"errors"

	"wanderly/models"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrInvalidDate      = errors.New("date format must be YYYY-MM-DD")
	ErrNoData           = errors.New("no weather data for the requested period")
)

// Provider looks up a forecast for a city. date is optional (YYYY-MM-DD).
type Provider interface {
	Report(ctx context.Context, location, date string) (*models.WeatherReport, error)
}

var wmoCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Drizzle: Light",
	53: "Drizzle: Moderate",
	55: "Drizzle: Dense",
	61: "Rain: Slight",
	63: "Rain: Moderate",
	65: "Rain: Heavy",
	71: "Snow fall: Slight",
	73: "Snow fall: Moderate",
	75: "Snow fall: Heavy",
	80: "Rain showers: Slight",
	81: "Rain showers: Moderate",
	82: "Rain showers: Violent",
	95: "Thunderstorm: Slight or moderate",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe maps a WMO weather interpretation code to text.
func Describe(code int) string {
	if d, ok := wmoCodes[code]; ok {
		return d
	}
	return "Unknown weather status"
}
