package weather

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wanderly/models"
	"wanderly/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const maxForecastDays = 5

// OpenMeteoClient resolves a city with the geocoding API, then reads its forecast.
type OpenMeteoClient struct {
	client       *resty.Client
	geocodingURL string
	forecastURL  string
}

func NewOpenMeteoClient(geocodingURL, forecastURL string, timeout time.Duration) *OpenMeteoClient {
	return &OpenMeteoClient{
		client:       resty.New().SetTimeout(timeout),
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
	}
}

type geoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (c *OpenMeteoClient) Report(ctx context.Context, location, date string) (*models.WeatherReport, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrLocationNotFound
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidDate, date)
		}
	}

	var geo geoResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":     location,
			"count":    "1",
			"language": "en",
			"format":   "json",
		}).
		SetResult(&geo).
		Get(c.geocodingURL)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("geocoding API error: %s", resp.String())
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}
	place := geo.Results[0]

	params := map[string]string{
		"latitude":        strconv.FormatFloat(place.Latitude, 'f', -1, 64),
		"longitude":       strconv.FormatFloat(place.Longitude, 'f', -1, 64),
		"current_weather": "true",
		"daily":           "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum",
		"timezone":        "auto",
	}
	if date != "" {
		params["start_date"] = date
		params["end_date"] = date
	}

	var fc forecastResponse
	resp, err = c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&fc).
		Get(c.forecastURL)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		utils.GetLogger().Warn("Open-Meteo forecast error",
			zap.String("location", place.Name),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, fmt.Errorf("weather API error: %s", resp.String())
	}

	report := &models.WeatherReport{City: place.Name, Country: place.Country}
	// Current conditions only make sense without a fixed date.
	if date == "" && fc.CurrentWeather != nil {
		report.Current = &models.WeatherDay{
			Description: Describe(fc.CurrentWeather.WeatherCode),
			Temperature: fc.CurrentWeather.Temperature,
		}
	}

	n := len(fc.Daily.Time)
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, place.Name)
	}
	if n > maxForecastDays {
		n = maxForecastDays
	}
	for i := 0; i < n; i++ {
		day := models.WeatherDay{Date: fc.Daily.Time[i]}
		if i < len(fc.Daily.WeatherCode) {
			day.Description = Describe(fc.Daily.WeatherCode[i])
		}
		if i < len(fc.Daily.TempMax) {
			day.High = fc.Daily.TempMax[i]
		}
		if i < len(fc.Daily.TempMin) {
			day.Low = fc.Daily.TempMin[i]
		}
		report.Days = append(report.Days, day)
	}
	return report, nil
}
