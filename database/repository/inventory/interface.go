package inventoryRepo

import (
	"context"

	"wanderly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// InventoryRepository reads bookable flights and hotels.
type InventoryRepository interface {
	FindFlights(ctx context.Context, q models.FlightQuery, limit int64) ([]models.FlightOption, error)
	FindHotels(ctx context.Context, q models.HotelQuery, limit int64) ([]models.HotelOption, error)
	InsertFlights(ctx context.Context, flights []models.FlightOption) error
	InsertHotels(ctx context.Context, hotels []models.HotelOption) error
}

type mongoInventoryRepo struct {
	flights *mongo.Collection
	hotels  *mongo.Collection
}

// NewMongoInventoryRepo returns an InventoryRepository backed by the flights and hotels collections.
func NewMongoInventoryRepo(db *mongo.Database) InventoryRepository {
	return &mongoInventoryRepo{
		flights: db.Collection("flights"),
		hotels:  db.Collection("hotels"),
	}
}
