package search

import (
	"context"
	"errors"
	"testing"

	"wanderly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	flights []models.FlightOption
	hotels  []models.HotelOption
	err     error
}

func (f *fakeInventory) FindFlights(_ context.Context, _ models.FlightQuery, _ int64) ([]models.FlightOption, error) {
	return f.flights, f.err
}

func (f *fakeInventory) FindHotels(_ context.Context, _ models.HotelQuery, _ int64) ([]models.HotelOption, error) {
	return f.hotels, f.err
}

func (f *fakeInventory) InsertFlights(context.Context, []models.FlightOption) error { return nil }
func (f *fakeInventory) InsertHotels(context.Context, []models.HotelOption) error  { return nil }

var lisbonTrip = models.FlightQuery{Origin: "Berlin", Destination: "Lisbon", DepartDate: "2026-05-01"}

func TestCatalogPrefersInventory(t *testing.T) {
	repo := &fakeInventory{
		flights: []models.FlightOption{{ID: "f1", Airline: "TAP", Price: 99}},
		hotels:  []models.HotelOption{{ID: "h1", Name: "Alfama Inn", PricePerNight: 80}},
	}
	p := NewCatalogProvider(repo, "EUR")

	flights, err := p.SearchFlights(context.Background(), lisbonTrip)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "f1", flights[0].ID)

	hotels, err := p.SearchHotels(context.Background(), models.HotelQuery{Location: "Lisbon", CheckIn: "2026-05-01", CheckOut: "2026-05-04"})
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, 240.0, hotels[0].TotalPrice)
}

func TestCatalogFallsBackToSimulation(t *testing.T) {
	p := NewCatalogProvider(&fakeInventory{}, "EUR")

	flights, err := p.SearchFlights(context.Background(), lisbonTrip)
	require.NoError(t, err)
	require.NotEmpty(t, flights)
	assert.LessOrEqual(t, len(flights), MaxOptions)
	for i, f := range flights {
		assert.Equal(t, "Berlin", f.Origin)
		assert.Equal(t, "EUR", f.Currency)
		assert.True(t, f.ArriveAt.After(f.DepartAt))
		assert.Equal(t, 2026, f.DepartAt.Year())
		if i > 0 {
			assert.GreaterOrEqual(t, f.Price, flights[i-1].Price)
		}
	}
}

func TestCatalogPropagatesInventoryErrors(t *testing.T) {
	p := NewCatalogProvider(&fakeInventory{err: errors.New("mongo down")}, "USD")
	_, err := p.SearchFlights(context.Background(), lisbonTrip)
	assert.Error(t, err)
}

func TestCatalogValidatesQueries(t *testing.T) {
	p := NewCatalogProvider(nil, "")
	_, err := p.SearchFlights(context.Background(), models.FlightQuery{Destination: "Lisbon"})
	assert.Error(t, err)
	_, err = p.SearchHotels(context.Background(), models.HotelQuery{})
	assert.Error(t, err)
}

func TestSimulationIsDeterministic(t *testing.T) {
	a := simulateFlights(lisbonTrip, "USD")
	b := simulateFlights(lisbonTrip, "USD")
	assert.Equal(t, a, b)

	q := models.HotelQuery{Location: "Lisbon", CheckIn: "2026-05-01", CheckOut: "2026-05-03", Tier: "comfort"}
	h1 := simulateHotels(q, "USD")
	h2 := simulateHotels(q, "USD")
	assert.Equal(t, h1, h2)
	for _, h := range h1 {
		assert.InDelta(t, h.PricePerNight*2, h.TotalPrice, 0.02)
	}
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, nights("2026-05-01", "2026-05-04"))
	assert.Equal(t, 1, nights("2026-05-04", "2026-05-01"))
	assert.Equal(t, 1, nights("", ""))
}
