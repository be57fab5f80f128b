package search

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"time"

	"wanderly/models"
)

var (
	airlines    = []string{"Aurora Air", "Meridian Airways", "SkyLark", "Pacific Crest", "Nordwind"}
	hotelPrefix = []string{"Grand", "Harbour", "Old Town", "Riverside", "Skyline"}
	hotelSuffix = []string{"Hotel", "Suites", "Inn", "Residences", "Boutique Hotel"}
)

// seed gives the same query the same options across turns and restarts.
func seed(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

func simulateFlights(q models.FlightQuery, currency string) []models.FlightOption {
	s := seed(q.Origin, q.Destination, q.DepartDate)
	day, err := time.Parse("2006-01-02", q.DepartDate)
	if err != nil {
		day = time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	base := 120 + float64(s%600)
	flights := make([]models.FlightOption, 0, MaxOptions)
	for i := 0; i < MaxOptions; i++ {
		v := (s >> (i * 8)) & 0xff
		depart := day.Add(time.Duration(6+i*3)*time.Hour + time.Duration(v%4)*15*time.Minute)
		duration := time.Duration(90+int(s%420)) * time.Minute
		price := roundPrice(base * (0.8 + float64(v)/255*0.9))
		if q.MaxPrice > 0 && price > q.MaxPrice {
			continue
		}
		airline := airlines[(int(v)+i)%len(airlines)]
		flights = append(flights, models.FlightOption{
			ID:           fmt.Sprintf("SIM-F-%x-%d", s&0xffffff, i),
			Airline:      airline,
			FlightNumber: fmt.Sprintf("%s%d", strings.ToUpper(airline[:2]), 100+int(v)),
			Origin:       q.Origin,
			Destination:  q.Destination,
			DepartAt:     depart,
			ArriveAt:     depart.Add(duration),
			Cabin:        cabinOrDefault(q.Cabin),
			Price:        price,
			Currency:     currency,
		})
	}
	sort.SliceStable(flights, func(i, j int) bool { return flights[i].Price < flights[j].Price })
	return flights
}

func cabinOrDefault(c string) string {
	if c == "" {
		return "economy"
	}
	return c
}

func simulateHotels(q models.HotelQuery, currency string) []models.HotelOption {
	s := seed(q.Location, q.CheckIn, q.Tier)
	n := nights(q.CheckIn, q.CheckOut)

	base := 60 + float64(s%140)
	switch strings.ToLower(q.Tier) {
	case "comfort":
		base *= 1.8
	case "luxury":
		base *= 3.5
	}

	hotels := make([]models.HotelOption, 0, MaxOptions)
	for i := 0; i < MaxOptions; i++ {
		v := (s >> (i * 8)) & 0xff
		nightly := roundPrice(base * (0.75 + float64(v)/255*0.8))
		if q.MaxPrice > 0 && nightly > q.MaxPrice {
			continue
		}
		hotels = append(hotels, models.HotelOption{
			ID:            fmt.Sprintf("SIM-H-%x-%d", s&0xffffff, i),
			Name:          fmt.Sprintf("%s %s %s", hotelPrefix[(int(v)+i)%len(hotelPrefix)], q.Location, hotelSuffix[i%len(hotelSuffix)]),
			Location:      q.Location,
			CheckIn:       q.CheckIn,
			CheckOut:      q.CheckOut,
			Rating:        math.Round((3.2+float64(v%18)/10)*10) / 10,
			PricePerNight: nightly,
			TotalPrice:    roundPrice(nightly * float64(n)),
			Currency:      currency,
		})
	}
	sort.SliceStable(hotels, func(i, j int) bool { return hotels[i].Rating > hotels[j].Rating })
	return hotels
}

// nights is the stay length; unparseable or inverted dates count as one night.
func nights(checkIn, checkOut string) int {
	in, err1 := time.Parse("2006-01-02", checkIn)
	out, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil || !out.After(in) {
		return 1
	}
	return int(out.Sub(in).Hours() / 24)
}
