package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, geoResults string, days int) (*httptest.Server, *[]string) {
	t.Helper()
	var forecastDates []string
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":` + geoResults + `}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		forecastDates = append(forecastDates, r.URL.Query().Get("start_date"))
		body := map[string]any{
			"current_weather": map[string]any{"temperature": 21.5, "weathercode": 2},
		}
		daily := map[string]any{"time": []string{}, "weathercode": []int{}, "temperature_2m_max": []float64{}, "temperature_2m_min": []float64{}}
		var times []string
		var codes []int
		var maxs, mins []float64
		for i := 0; i < days; i++ {
			times = append(times, time.Date(2026, 5, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
			codes = append(codes, 61)
			maxs = append(maxs, 20+float64(i))
			mins = append(mins, 10+float64(i))
		}
		if days > 0 {
			daily = map[string]any{"time": times, "weathercode": codes, "temperature_2m_max": maxs, "temperature_2m_min": mins}
		}
		body["daily"] = daily
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &forecastDates
}

const lisbon = `[{"name":"Lisbon","country":"Portugal","latitude":38.72,"longitude":-9.13}]`

func TestReportCurrentAndForecast(t *testing.T) {
	srv, _ := newTestServer(t, lisbon, 7)
	c := NewOpenMeteoClient(srv.URL+"/geo", srv.URL+"/forecast", 2*time.Second)

	r, err := c.Report(context.Background(), "lisbon", "")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", r.City)
	assert.Equal(t, "Portugal", r.Country)
	require.NotNil(t, r.Current)
	assert.Equal(t, "Partly cloudy", r.Current.Description)
	assert.Len(t, r.Days, maxForecastDays)
	assert.Equal(t, "Rain: Slight", r.Days[0].Description)
	assert.Contains(t, r.String(), "Weather Report for Lisbon, Portugal")
}

func TestReportForDate(t *testing.T) {
	srv, dates := newTestServer(t, lisbon, 1)
	c := NewOpenMeteoClient(srv.URL+"/geo", srv.URL+"/forecast", 2*time.Second)

	r, err := c.Report(context.Background(), "Lisbon", "2026-05-01")
	require.NoError(t, err)
	assert.Nil(t, r.Current)
	assert.Len(t, r.Days, 1)
	assert.Equal(t, []string{"2026-05-01"}, *dates)
}

func TestReportErrors(t *testing.T) {
	srv, _ := newTestServer(t, `[]`, 3)
	c := NewOpenMeteoClient(srv.URL+"/geo", srv.URL+"/forecast", 2*time.Second)

	_, err := c.Report(context.Background(), "Atlantis", "")
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = c.Report(context.Background(), "Lisbon", "01/05/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	srv2, _ := newTestServer(t, lisbon, 0)
	c2 := NewOpenMeteoClient(srv2.URL+"/geo", srv2.URL+"/forecast", 2*time.Second)
	_, err = c2.Report(context.Background(), "Lisbon", "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Clear sky", Describe(0))
	assert.Equal(t, "Unknown weather status", Describe(42))
}
