package inventoryRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"wanderly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ciExact(v string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(v) + "$", "$options": "i"}
}

// FindFlights matches origin/destination case-insensitively and, when a depart
// date is given, flights departing on that calendar day (UTC). Cheapest first.
func (r *mongoInventoryRepo) FindFlights(ctx context.Context, q models.FlightQuery, limit int64) ([]models.FlightOption, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"origin":      ciExact(q.Origin),
		"destination": ciExact(q.Destination),
	}
	if q.DepartDate != "" {
		day, err := time.Parse("2006-01-02", q.DepartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid depart date %q: %w", q.DepartDate, err)
		}
		filter["departAt"] = bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}
	}
	if q.MaxPrice > 0 {
		filter["price"] = bson.M{"$lte": q.MaxPrice}
	}

	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}}).SetLimit(limit)
	cursor, err := r.flights.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var flights []models.FlightOption
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// FindHotels matches the location case-insensitively, best rated first.
func (r *mongoInventoryRepo) FindHotels(ctx context.Context, q models.HotelQuery, limit int64) ([]models.HotelOption, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"location": ciExact(q.Location)}
	if q.MaxPrice > 0 {
		filter["pricePerNight"] = bson.M{"$lte": q.MaxPrice}
	}

	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "pricePerNight", Value: 1}}).SetLimit(limit)
	cursor, err := r.hotels.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hotels []models.HotelOption
	if err := cursor.All(ctx, &hotels); err != nil {
		return nil, err
	}
	return hotels, nil
}

func (r *mongoInventoryRepo) InsertFlights(ctx context.Context, flights []models.FlightOption) error {
	if len(flights) == 0 {
		return nil
	}
	docs := make([]interface{}, len(flights))
	for i, f := range flights {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		docs[i] = f
	}
	_, err := r.flights.InsertMany(ctx, docs)
	return err
}

func (r *mongoInventoryRepo) InsertHotels(ctx context.Context, hotels []models.HotelOption) error {
	if len(hotels) == 0 {
		return nil
	}
	docs := make([]interface{}, len(hotels))
	for i, h := range hotels {
		if h.ID == "" {
			h.ID = uuid.New().String()
		}
		docs[i] = h
	}
	_, err := r.hotels.InsertMany(ctx, docs)
	return err
}
