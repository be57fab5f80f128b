package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wanderly/models"
	"wanderly/services/booking"
	ai "wanderly/services/intelligence"
	"wanderly/services/search"
	"wanderly/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func cabinFor(tier string) string {
	if strings.EqualFold(tier, "luxury") {
		return "business"
	}
	return "economy"
}

func (n *nodes) search(ctx context.Context, st *models.TravelState, emit Emitter) error {
	plan := st.ChosenTravelPlan()
	if plan == nil {
		st.Step = models.StepReview
		say(st, emit, NodeSearch, "Please choose one of the plans first.")
		return nil
	}
	req := st.Requirements

	var flights []models.FlightOption
	var hotels []models.HotelOption
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flights, err = n.deps.Search.SearchFlights(gctx, models.FlightQuery{
			Origin:      req.Origin,
			Destination: req.Destination,
			DepartDate:  req.DepartDate,
			ReturnDate:  req.ReturnDate,
			Cabin:       cabinFor(plan.Tier),
		})
		return err
	})
	g.Go(func() error {
		var err error
		hotels, err = n.deps.Search.SearchHotels(gctx, models.HotelQuery{
			Location: req.Destination,
			CheckIn:  req.DepartDate,
			CheckOut: req.ReturnDate,
			Tier:     plan.Tier,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		utils.GetLogger().Error("Search failed", zap.String("thread", st.ThreadID), zap.Error(err))
		say(st, emit, NodeSearch, "Sorry, I could not search flights and hotels right now. Say \"continue\" to try again.")
		return nil
	}
	if len(flights) == 0 || len(hotels) == 0 {
		say(st, emit, NodeSearch, "Sorry, I found no matching flights or hotels. You can change your dates or budget, or say \"continue\" to search again.")
		return nil
	}
	if len(flights) > search.MaxOptions {
		flights = flights[:search.MaxOptions]
	}
	if len(hotels) > search.MaxOptions {
		hotels = hotels[:search.MaxOptions]
	}

	st.FlightOptions = flights
	st.HotelOptions = hotels
	st.SelectedFlight = nil
	st.SelectedHotel = nil
	st.Step = models.StepSelecting
	say(st, emit, NodeSearch, formatOptions(flights, hotels))
	return nil
}

type selectOutput struct {
	FlightIndex int    `json:"flight_index"`
	HotelIndex  int    `json:"hotel_index"`
	Reply       string `json:"reply"`
}

func (n *nodes) selectOptions(ctx context.Context, st *models.TravelState, emit Emitter) error {
	if len(st.FlightOptions) == 0 || len(st.HotelOptions) == 0 {
		st.Step = models.StepSearching
		say(st, emit, NodeSelect, "I have no options to choose from yet. Say \"continue\" and I will search again.")
		return nil
	}

	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeSelect,
		System: systemPrompt,
		Prompt: selectPrompt(st.FlightOptions, st.HotelOptions, st.LastUserMessage()),
		JSON:   true,
	})
	if err != nil {
		return err
	}
	out := selectOutput{FlightIndex: -1, HotelIndex: -1}
	if err := ai.DecodeJSON(raw, &out); err != nil {
		return err
	}

	validFlight := out.FlightIndex >= 0 && out.FlightIndex < len(st.FlightOptions)
	validHotel := out.HotelIndex >= 0 && out.HotelIndex < len(st.HotelOptions)
	if !validFlight || !validHotel {
		say(st, emit, NodeSelect, fmt.Sprintf("Please pick both a flight (1-%d) and a hotel (1-%d).",
			len(st.FlightOptions), len(st.HotelOptions)))
		return nil
	}

	f := st.FlightOptions[out.FlightIndex]
	h := st.HotelOptions[out.HotelIndex]
	st.SelectedFlight = &f
	st.SelectedHotel = &h
	st.Step = models.StepPaying
	say(st, emit, NodeSelect, fmt.Sprintf("You picked %s %s and %s. Holding them for you now...", f.Airline, f.FlightNumber, h.Name))
	return nil
}

// bookingCurrency picks the currency both orders are charged in. Empty
// currencies fall back to the other option or the default; two different
// currencies cannot be summed.
func bookingCurrency(flight, hotel, fallback string) (string, bool) {
	switch {
	case flight == "" && hotel == "":
		return fallback, true
	case flight == "":
		return hotel, true
	case hotel == "" || strings.EqualFold(flight, hotel):
		return flight, true
	}
	return "", false
}

func (n *nodes) pay(ctx context.Context, st *models.TravelState, emit Emitter) error {
	f, h := st.SelectedFlight, st.SelectedHotel
	if f == nil || h == nil {
		st.Step = models.StepSelecting
		say(st, emit, NodePay, "Please choose a flight and a hotel first.")
		return nil
	}
	currency, ok := bookingCurrency(f.Currency, h.Currency, n.deps.Currency)
	if !ok {
		utils.GetLogger().Warn("Flight and hotel priced in different currencies",
			zap.String("thread", st.ThreadID), zap.String("flight", f.Currency), zap.String("hotel", h.Currency))
		st.Step = models.StepSelecting
		say(st, emit, NodePay, fmt.Sprintf("The flight is priced in %s but the hotel in %s, so I cannot charge them together. Please pick options in the same currency.",
			strings.ToUpper(f.Currency), strings.ToUpper(h.Currency)))
		return nil
	}
	total := f.Price + h.TotalPrice

	var reviews []string
	for _, action := range []booking.BookingAction{
		{Tool: booking.ToolBookFlight, Destination: f.Destination, Amount: f.Price, Currency: currency},
		{Tool: booking.ToolBookHotel, Destination: h.Location, Amount: h.TotalPrice, Currency: currency},
	} {
		res := n.deps.Rules.Evaluate(action)
		if err := res.Err(); err != nil {
			var v *booking.RuleViolation
			errors.As(err, &v)
			utils.GetLogger().Warn("Booking blocked by rule",
				zap.String("thread", st.ThreadID), zap.String("rule", v.Rule), zap.String("reason", v.Reason))
			st.Step = models.StepSelecting
			say(st, emit, NodePay, "I cannot place this booking: "+v.Reason+".")
			return nil
		}
		if res.Action == booking.ActionReview {
			reviews = append(reviews, res.Reason)
		}
	}

	fail := func(err error, locked ...*models.Order) error {
		for _, o := range locked {
			if rerr := n.deps.Orders.Release(ctx, o.ID); rerr != nil {
				utils.GetLogger().Error("Failed to release order", zap.String("order", o.ID), zap.Error(rerr))
			}
		}
		utils.GetLogger().Error("Booking failed", zap.String("thread", st.ThreadID), zap.Error(err))
		st.Step = models.StepSelecting
		say(st, emit, NodePay, "Sorry, I could not hold your flight and hotel. Please pick again or try once more.")
		return nil
	}

	flightOrder, err := n.deps.Orders.LockFlight(ctx, st.ThreadID, st.UserID, *f)
	if err != nil {
		return fail(err)
	}
	hotelOrder, err := n.deps.Orders.LockHotel(ctx, st.ThreadID, st.UserID, *h)
	if err != nil {
		return fail(err, flightOrder)
	}

	inv, err := n.deps.Payments.CreatePayment(ctx, models.PaymentRequest{
		ThreadID:    st.ThreadID,
		UserID:      st.UserID,
		Amount:      total,
		Currency:    currency,
		Idempotency: st.ThreadID + ":" + flightOrder.ID + ":" + hotelOrder.ID,
		Description: fmt.Sprintf("Trip to %s: %s %s + %s", f.Destination, f.Airline, f.FlightNumber, h.Name),
		Metadata: map[string]string{
			"flight_order_id": flightOrder.ID,
			"hotel_order_id":  hotelOrder.ID,
		},
	})
	if err != nil {
		return fail(err, flightOrder, hotelOrder)
	}

	if n.deps.Scheduler != nil {
		payload := models.LockExpiryPayload{ThreadID: st.ThreadID, OrderIDs: []string{flightOrder.ID, hotelOrder.ID}}
		if err := n.deps.Scheduler.ScheduleLockExpiry(ctx, payload, n.deps.Orders.LockTTL()); err != nil {
			utils.GetLogger().Warn("Failed to schedule lock expiry", zap.String("thread", st.ThreadID), zap.Error(err))
		}
	}

	st.Booking = &models.BookingResult{
		FlightOrderID: flightOrder.ID,
		HotelOrderID:  hotelOrder.ID,
		InvoiceID:     inv.InvoiceID,
		PaymentID:     inv.PaymentID,
		Provider:      inv.Provider,
		ClientSecret:  inv.ClientSecret,
		Amount:        total,
		Currency:      inv.Currency,
		Status:        models.BookingAwaitingPayment,
		ReviewReasons: reviews,
		LockedUntil:   flightOrder.LockedUntil,
	}

	msg := fmt.Sprintf("Your flight and hotel are on hold until %s. Total: %.2f %s. Please complete payment %s to confirm.",
		flightOrder.LockedUntil.Format("15:04 MST"), total, inv.Currency, inv.PaymentID)
	if len(reviews) > 0 {
		msg += " Note: this booking will be reviewed (" + strings.Join(reviews, "; ") + ")."
	}
	say(st, emit, NodePay, msg)
	return nil
}

func (n *nodes) awaitPayment(_ context.Context, st *models.TravelState, emit Emitter) error {
	b := st.Booking
	if b == nil || b.Status != models.BookingAwaitingPayment {
		st.Step = models.StepSelecting
		say(st, emit, NodeAwaitPayment, "There is no payment pending. Please pick your flight and hotel again.")
		return nil
	}
	say(st, emit, NodeAwaitPayment, fmt.Sprintf("Your payment of %.2f %s (%s) is still pending. Your booking is held until %s.",
		b.Amount, b.Currency, b.PaymentID, b.LockedUntil.Format("15:04 MST")))
	return nil
}

// releaseBooking frees both held orders; errors are logged since the locks expire anyway.
func (n *nodes) releaseBooking(ctx context.Context, b *models.BookingResult) {
	for _, id := range []string{b.FlightOrderID, b.HotelOrderID} {
		if id == "" {
			continue
		}
		if err := n.deps.Orders.Release(ctx, id); err != nil {
			utils.GetLogger().Error("Failed to release order", zap.String("order", id), zap.Error(err))
		}
	}
}

// revertOrders puts already confirmed orders back on hold.
func (n *nodes) revertOrders(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := n.deps.Orders.Revert(ctx, id); err != nil {
			utils.GetLogger().Error("Failed to revert order", zap.String("order", id), zap.Error(err))
		}
	}
}

// confirmPayment settles the held orders once payment arrives. Both locks are
// checked before anything is confirmed, and a confirmation that fails halfway
// is reverted, so the two orders always end in the same state.
func (n *nodes) confirmPayment(ctx context.Context, st *models.TravelState, emit Emitter) error {
	ev, b := st.PaymentEvent, st.Booking
	if b != nil && b.Status == models.BookingConfirmed {
		st.PaymentEvent = nil
		st.Step = models.StepFinished
		return nil
	}
	if ev == nil || b == nil {
		say(st, emit, NodeConfirmPayment, "Still waiting for your payment.")
		return nil
	}
	st.PaymentEvent = nil

	if !ev.Succeeded() {
		n.releaseBooking(ctx, b)
		b.Status = models.BookingFailed
		st.Step = models.StepSelecting
		reason := ev.Reason
		if reason == "" {
			reason = "the payment was declined"
		}
		say(st, emit, NodeConfirmPayment, "Payment failed: "+reason+". Your hold was released; pick a flight and hotel to try again.")
		return nil
	}

	lockLost := func() error {
		n.releaseBooking(ctx, b)
		b.Status = models.BookingFailed
		st.Step = models.StepSelecting
		utils.GetLogger().Warn("Payment arrived after lock was lost",
			zap.String("thread", st.ThreadID), zap.String("payment", ev.PaymentID))
		say(st, emit, NodeConfirmPayment, "Your payment arrived after the hold expired, so the booking could not be confirmed. Please pick again.")
		return nil
	}

	ids := []string{b.FlightOrderID, b.HotelOrderID}
	for _, id := range ids {
		if err := n.deps.Orders.Verify(ctx, id); err != nil {
			if errors.Is(err, booking.ErrLockLost) {
				return lockLost()
			}
			return err
		}
	}

	var confirmed []string
	for _, id := range ids {
		if err := n.deps.Orders.Confirm(ctx, id); err != nil {
			n.revertOrders(ctx, confirmed)
			if errors.Is(err, booking.ErrLockLost) {
				return lockLost()
			}
			return err
		}
		confirmed = append(confirmed, id)
	}

	b.Status = models.BookingConfirmed
	b.ClientSecret = ""
	st.Step = models.StepFinished
	say(st, emit, NodeConfirmPayment, fmt.Sprintf("Payment received. Your booking is confirmed (invoice %s).", b.InvoiceID))
	return nil
}

func (n *nodes) summary(ctx context.Context, st *models.TravelState, emit Emitter) error {
	text, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeSummary,
		System: systemPrompt,
		Prompt: summaryPrompt(st),
	})
	if err != nil {
		return err
	}
	say(st, emit, NodeSummary, strings.TrimSpace(text))
	return nil
}
