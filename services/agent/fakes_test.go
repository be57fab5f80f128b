package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"wanderly/models"
	"wanderly/services/booking"
	ai "wanderly/services/intelligence"
	"wanderly/services/weather"
)

// fakeLLM answers by task name. The last queued answer for a task repeats.
type fakeLLM struct {
	mu      sync.Mutex
	answers map[string][]string
	errs    map[string]error
	counts  map[string]int
	prompts map[string][]string
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		answers: make(map[string][]string),
		errs:    make(map[string]error),
		counts:  make(map[string]int),
		prompts: make(map[string][]string),
	}
}

func (f *fakeLLM) on(task string, answers ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[task] = answers
	delete(f.errs, task)
}

func (f *fakeLLM) fail(task string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[task] = err
}

func (f *fakeLLM) calls(task string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[task]
}

func (f *fakeLLM) lastPrompt(task string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.prompts[task]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (f *fakeLLM) Complete(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[req.Task]++
	f.prompts[req.Task] = append(f.prompts[req.Task], req.Prompt)
	if err := f.errs[req.Task]; err != nil {
		return "", err
	}
	q := f.answers[req.Task]
	if len(q) == 0 {
		return "", fmt.Errorf("fake llm: no answer for task %q", req.Task)
	}
	ans := q[0]
	if len(q) > 1 {
		f.answers[req.Task] = q[1:]
	}
	return ans, nil
}

func (f *fakeLLM) Stream(ctx context.Context, req ai.Request, onChunk func(string)) (string, error) {
	full, err := f.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	for _, w := range strings.SplitAfter(full, " ") {
		onChunk(w)
	}
	return full, nil
}

type fakeSearch struct {
	err error
}

func (f *fakeSearch) SearchFlights(_ context.Context, q models.FlightQuery) ([]models.FlightOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	dep := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	var out []models.FlightOption
	for i := 0; i < 6; i++ {
		out = append(out, models.FlightOption{
			ID:           fmt.Sprintf("f%d", i),
			Airline:      "Aurora Air",
			FlightNumber: fmt.Sprintf("AU%d", 100+i),
			Origin:       q.Origin,
			Destination:  q.Destination,
			DepartAt:     dep,
			ArriveAt:     dep.Add(3 * time.Hour),
			Cabin:        q.Cabin,
			Price:        300 + float64(i*10),
			Currency:     "USD",
		})
	}
	return out, nil
}

func (f *fakeSearch) SearchHotels(_ context.Context, q models.HotelQuery) ([]models.HotelOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.HotelOption{
		{ID: "h0", Name: "Harbour Inn", Location: q.Location, PricePerNight: 100, TotalPrice: 400, Currency: "USD", Rating: 4.5},
		{ID: "h1", Name: "Grand Suites", Location: q.Location, PricePerNight: 250, TotalPrice: 1000, Currency: "USD", Rating: 4.8},
	}, nil
}

type fakeGuides struct{ queries []string }

func (f *fakeGuides) SearchGuides(_ context.Context, query string) (*models.GuideResult, error) {
	f.queries = append(f.queries, query)
	return &models.GuideResult{Answer: "Pastéis de nata are a must."}, nil
}

type fakeWeather struct {
	locations []string
	err       error
}

func (f *fakeWeather) Report(_ context.Context, location, date string) (*models.WeatherReport, error) {
	f.locations = append(f.locations, location)
	if f.err != nil {
		return nil, f.err
	}
	return &models.WeatherReport{
		City:    location,
		Country: "Portugal",
		Days:    []models.WeatherDay{{Date: "2026-05-01", Description: weather.Describe(0), High: 24, Low: 15}},
	}, nil
}

type fakeOrders struct {
	mu       sync.Mutex
	seq      int
	status   map[string]string
	threads  map[string]string
	failLock bool
	now      func() time.Time

	// loseOnConfirm makes Confirm of that order fail as if its lock expired mid-flight.
	loseOnConfirm string
	confirmErr    error
}

func newFakeOrders(now func() time.Time) *fakeOrders {
	return &fakeOrders{status: make(map[string]string), threads: make(map[string]string), now: now}
}

func (f *fakeOrders) lock(threadID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("o%d", f.seq)
	f.status[id] = models.OrderLocked
	f.threads[id] = threadID
	return &models.Order{ID: id, ThreadID: threadID, Status: models.OrderLocked, LockedUntil: f.now().Add(f.LockTTL())}, nil
}

func (f *fakeOrders) LockFlight(_ context.Context, threadID, _ string, _ models.FlightOption) (*models.Order, error) {
	return f.lock(threadID)
}

func (f *fakeOrders) LockHotel(_ context.Context, threadID, _ string, _ models.HotelOption) (*models.Order, error) {
	if f.failLock {
		return nil, fmt.Errorf("inventory unavailable")
	}
	return f.lock(threadID)
}

func (f *fakeOrders) Verify(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id] != models.OrderLocked {
		return booking.ErrLockLost
	}
	return nil
}

func (f *fakeOrders) Confirm(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id] != models.OrderLocked {
		return booking.ErrLockLost
	}
	if f.loseOnConfirm == id {
		f.status[id] = models.OrderExpired
		return booking.ErrLockLost
	}
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.status[id] = models.OrderConfirmed
	return nil
}

func (f *fakeOrders) Revert(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id] == models.OrderConfirmed {
		f.status[id] = models.OrderLocked
	}
	return nil
}

func (f *fakeOrders) ThreadOrders(_ context.Context, threadID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for i := 1; i <= f.seq; i++ {
		id := fmt.Sprintf("o%d", i)
		if f.threads[id] == threadID {
			out = append(out, models.Order{ID: id, ThreadID: threadID, Status: f.status[id]})
		}
	}
	return out, nil
}

func (f *fakeOrders) Release(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id] == models.OrderLocked {
		f.status[id] = models.OrderReleased
	}
	return nil
}

func (f *fakeOrders) expire(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = models.OrderExpired
}

func (f *fakeOrders) get(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[id]
}

func (f *fakeOrders) LockTTL() time.Duration { return 15 * time.Minute }

type fakeScheduler struct {
	payloads []models.LockExpiryPayload
}

func (f *fakeScheduler) ScheduleLockExpiry(_ context.Context, p models.LockExpiryPayload, _ time.Duration) error {
	f.payloads = append(f.payloads, p)
	return nil
}

var testNow = time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC)

func newTestDeps(llm *fakeLLM) Deps {
	now := func() time.Time { return testNow }
	return Deps{
		LLM:       llm,
		Search:    &fakeSearch{},
		Weather:   &fakeWeather{},
		Orders:    newFakeOrders(now),
		Payments:  booking.SimulatedGateway{},
		Rules:     booking.DefaultRuleEngine(5000, []string{"Pyongyang"}, now),
		Scheduler: &fakeScheduler{},
		Currency:  "USD",
		Now:       now,
	}
}
