package models

import "time"

// TravelPlan is one of the candidate itineraries generated for the user.
type TravelPlan struct {
	ID       int     `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Tier     string  `bson:"tier,omitempty" json:"tier,omitempty"` // economy, comfort, luxury
	Price    float64 `bson:"price" json:"price"`
	Currency string  `bson:"currency,omitempty" json:"currency,omitempty"`
	Details  string  `bson:"details" json:"details"`
}

type FlightOption struct {
	ID           string    `bson:"id" json:"id"`
	Airline      string    `bson:"airline" json:"airline"`
	FlightNumber string    `bson:"flightNumber" json:"flight_number"`
	Origin       string    `bson:"origin" json:"origin"`
	Destination  string    `bson:"destination" json:"destination"`
	DepartAt     time.Time `bson:"departAt" json:"depart_at"`
	ArriveAt     time.Time `bson:"arriveAt" json:"arrive_at"`
	Cabin        string    `bson:"cabin,omitempty" json:"cabin,omitempty"`
	Price        float64   `bson:"price" json:"price"`
	Currency     string    `bson:"currency" json:"currency"`
}

type HotelOption struct {
	ID            string  `bson:"id" json:"id"`
	Name          string  `bson:"name" json:"name"`
	Location      string  `bson:"location" json:"location"`
	CheckIn       string  `bson:"checkIn" json:"check_in"`
	CheckOut      string  `bson:"checkOut" json:"check_out"`
	Rating        float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	PricePerNight float64 `bson:"pricePerNight" json:"price_per_night"`
	TotalPrice    float64 `bson:"totalPrice" json:"total_price"`
	Currency      string  `bson:"currency" json:"currency"`
}

const (
	BookingAwaitingPayment = "awaiting_payment"
	BookingConfirmed       = "confirmed"
	BookingFailed          = "failed"
	BookingReleased        = "released"
)

// BookingResult is the receipt of the lock/pay step.
type BookingResult struct {
	FlightOrderID string    `bson:"flightOrderId" json:"flight_order_id"`
	HotelOrderID  string    `bson:"hotelOrderId" json:"hotel_order_id"`
	InvoiceID     string    `bson:"invoiceId" json:"invoice_id"`
	PaymentID     string    `bson:"paymentId" json:"payment_id"`
	Provider      string    `bson:"provider" json:"provider"`
	ClientSecret  string    `bson:"clientSecret,omitempty" json:"client_secret,omitempty"`
	Amount        float64   `bson:"amount" json:"amount"`
	Currency      string    `bson:"currency" json:"currency"`
	Status        string    `bson:"status" json:"status"`
	ReviewReasons []string  `bson:"reviewReasons,omitempty" json:"review_reasons,omitempty"`
	LockedUntil   time.Time `bson:"lockedUntil" json:"locked_until"`
}

// FlightQuery and HotelQuery are what the search step asks providers for.
type FlightQuery struct {
	Origin      string
	Destination string
	DepartDate  string
	ReturnDate  string
	Cabin       string
	MaxPrice    float64
}

type HotelQuery struct {
	Location string
	CheckIn  string
	CheckOut string
	Tier     string
	MaxPrice float64
}

// GuideHit is one source returned by the travel-guide search.
type GuideHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type GuideResult struct {
	Answer  string     `json:"answer,omitempty"`
	Results []GuideHit `json:"results"`
}
