package search

import (
	"context"
	"fmt"
	"time"

	inventoryRepo "wanderly/database/repository/inventory"
	"wanderly/models"
	"wanderly/utils"

	"go.uber.org/zap"
)

// MaxOptions caps how many flights or hotels are offered per search.
const MaxOptions = 5

// CatalogProvider serves the inventory collections and falls back to generated
// options for routes the catalog does not cover yet.
type CatalogProvider struct {
	repo     inventoryRepo.InventoryRepository
	currency string
}

// NewCatalogProvider accepts a nil repo, in which case every search is simulated.
func NewCatalogProvider(repo inventoryRepo.InventoryRepository, currency string) *CatalogProvider {
	if currency == "" {
		currency = "USD"
	}
	return &CatalogProvider{repo: repo, currency: currency}
}

func (p *CatalogProvider) SearchFlights(ctx context.Context, q models.FlightQuery) ([]models.FlightOption, error) {
	if q.Origin == "" || q.Destination == "" {
		return nil, fmt.Errorf("flight search needs origin and destination")
	}
	if p.repo != nil {
		lookup := q
		// Free-text dates cannot be matched against the catalog; search the whole route instead.
		if _, err := time.Parse("2006-01-02", lookup.DepartDate); err != nil {
			lookup.DepartDate = ""
		}
		flights, err := p.repo.FindFlights(ctx, lookup, MaxOptions)
		if err != nil {
			return nil, fmt.Errorf("flight inventory lookup failed: %w", err)
		}
		if len(flights) > 0 {
			return flights, nil
		}
		utils.GetLogger().Info("No catalog flights, simulating",
			zap.String("origin", q.Origin), zap.String("destination", q.Destination))
	}
	return simulateFlights(q, p.currency), nil
}

func (p *CatalogProvider) SearchHotels(ctx context.Context, q models.HotelQuery) ([]models.HotelOption, error) {
	if q.Location == "" {
		return nil, fmt.Errorf("hotel search needs a location")
	}
	if p.repo != nil {
		hotels, err := p.repo.FindHotels(ctx, q, MaxOptions)
		if err != nil {
			return nil, fmt.Errorf("hotel inventory lookup failed: %w", err)
		}
		if len(hotels) > 0 {
			return withTotals(hotels, q), nil
		}
		utils.GetLogger().Info("No catalog hotels, simulating", zap.String("location", q.Location))
	}
	return simulateHotels(q, p.currency), nil
}

// withTotals fills the stay price for catalog hotels, which only carry a nightly rate.
func withTotals(hotels []models.HotelOption, q models.HotelQuery) []models.HotelOption {
	n := nights(q.CheckIn, q.CheckOut)
	for i := range hotels {
		hotels[i].CheckIn = q.CheckIn
		hotels[i].CheckOut = q.CheckOut
		hotels[i].TotalPrice = hotels[i].PricePerNight * float64(n)
	}
	return hotels
}
