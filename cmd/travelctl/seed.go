package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"wanderly/models"
)

// inventoryWriter is the write side of the inventory repository.
type inventoryWriter interface {
	InsertFlights(ctx context.Context, flights []models.FlightOption) error
	InsertHotels(ctx context.Context, hotels []models.HotelOption) error
}

// inventoryFile is the seed format: {"flights": [...], "hotels": [...]}.
type inventoryFile struct {
	Flights []models.FlightOption `json:"flights"`
	Hotels  []models.HotelOption  `json:"hotels"`
}

func (f inventoryFile) validate() error {
	var errs []error
	for i, fl := range f.Flights {
		if fl.Origin == "" || fl.Destination == "" || fl.Price <= 0 {
			errs = append(errs, fmt.Errorf("flight %d: origin, destination and a positive price are required", i))
		}
	}
	for i, h := range f.Hotels {
		if h.Name == "" || h.Location == "" || h.PricePerNight <= 0 {
			errs = append(errs, fmt.Errorf("hotel %d: name, location and a positive price_per_night are required", i))
		}
	}
	return errors.Join(errs...)
}

// loadInventory reads a seed file and writes it through repo. Nothing is
// written when any entry is invalid.
func loadInventory(ctx context.Context, r io.Reader, repo inventoryWriter, defaultCurrency string) (flights, hotels int, err error) {
	var f inventoryFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return 0, 0, fmt.Errorf("parse inventory: %w", err)
	}
	if err := f.validate(); err != nil {
		return 0, 0, err
	}
	for i := range f.Flights {
		if f.Flights[i].Currency == "" {
			f.Flights[i].Currency = defaultCurrency
		}
	}
	for i := range f.Hotels {
		if f.Hotels[i].Currency == "" {
			f.Hotels[i].Currency = defaultCurrency
		}
	}

	if err := repo.InsertFlights(ctx, f.Flights); err != nil {
		return 0, 0, fmt.Errorf("insert flights: %w", err)
	}
	if err := repo.InsertHotels(ctx, f.Hotels); err != nil {
		return len(f.Flights), 0, fmt.Errorf("insert hotels: %w", err)
	}
	return len(f.Flights), len(f.Hotels), nil
}
