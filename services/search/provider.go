package search

import (
	"context"

	"wanderly/models"
)

// Provider finds bookable flights and hotels.
type Provider interface {
	SearchFlights(ctx context.Context, q models.FlightQuery) ([]models.FlightOption, error)
	SearchHotels(ctx context.Context, q models.HotelQuery) ([]models.HotelOption, error)
}

// GuideSearcher answers free-form travel questions from the web.
type GuideSearcher interface {
	SearchGuides(ctx context.Context, query string) (*models.GuideResult, error)
}
