package models

import (
	"fmt"
	"strings"
)

type WeatherDay struct {
	Date        string  `json:"date,omitempty"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature,omitempty"`
	High        float64 `json:"high,omitempty"`
	Low         float64 `json:"low,omitempty"`
}

// WeatherReport is the formatted result of a weather lookup.
type WeatherReport struct {
	City    string       `json:"city"`
	Country string       `json:"country"`
	Current *WeatherDay  `json:"current,omitempty"`
	Days    []WeatherDay `json:"days"`
}

func (r WeatherReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Weather Report for %s, %s:\n", r.City, r.Country)
	if r.Current != nil {
		fmt.Fprintf(&sb, "- Current: %s, %.1f°C\n", r.Current.Description, r.Current.Temperature)
	}
	sb.WriteString("- Forecast:\n")
	for _, d := range r.Days {
		fmt.Fprintf(&sb, "  %s: %s, High %.1f°C / Low %.1f°C\n", d.Date, d.Description, d.High, d.Low)
	}
	return sb.String()
}
