package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wanderly/models"
)

const systemPrompt = "You are Wanderly, a professional travel consultant helping a user plan and book a trip. Be concise and friendly."

const sideChatSystem = "You are a travel assistant. The user asked something unrelated to the current booking step. " +
	"Answer briefly, then guide the user back to the booking flow."

func slotsJSON(r models.Requirements) string {
	b, _ := json.Marshal(r)
	return string(b)
}

func routerPrompt(step models.Step, last string) string {
	return fmt.Sprintf(`You classify user intent. The user is at the %q stage of travel planning.
Latest user input: %q

Answer with JSON {"decision": "...", "reason": "..."} where decision is one of:
- "modify": the user clearly wants to change destination, origin, dates, budget or party size.
- "check_weather": the user asks about the weather or forecast somewhere.
- "side_chat": the user asks about travel guides, visas or anything unrelated to the current step.
- "continue": the user answers the assistant, confirms or picks an option, or asks about the pending payment.`, step, last)
}

func collectPrompt(r models.Requirements, last string, today time.Time) string {
	return fmt.Sprintf(`Collect the trip requirements: destination, origin, depart_date, budget (return_date, people and notes are optional).
Today is %s. Write dates as YYYY-MM-DD.

Known so far: %s
Latest user reply: %q

Answer with JSON:
{"updated_slots": {"destination": "", "origin": "", "depart_date": "", "return_date": "", "budget": "", "people": "", "notes": ""},
 "is_complete": true|false,
 "reply": "ask for what is missing, or say plans are being prepared"}
Only fill slots the user actually provided.`, today.Format("2006-01-02"), slotsJSON(r), last)
}

func planPrompt(r models.Requirements, currency string) string {
	return fmt.Sprintf(`Requirements: %s
Create 3 clearly different travel plans: one "economy", one "comfort" and one "luxury".
Prices are totals in %s.

Answer with JSON:
{"plans": [{"id": 1, "name": "...", "tier": "economy", "price": 0, "currency": "%s", "details": "..."}, ...],
 "reply_text": "short intro for the user"}`, slotsJSON(r), currency, currency)
}

func formatPlans(intro string, plans []models.TravelPlan) string {
	var sb strings.Builder
	sb.WriteString(intro)
	for i, p := range plans {
		fmt.Fprintf(&sb, "\nPlan %d: %s (%.0f %s) - %s", i+1, p.Name, p.Price, p.Currency, p.Details)
	}
	sb.WriteString("\nWhich plan would you like?")
	return sb.String()
}

func reviewPrompt(plans []models.TravelPlan, last string) string {
	var sb strings.Builder
	for i, p := range plans {
		fmt.Fprintf(&sb, "index %d: plan %d %q (%s, %.0f %s)\n", i, i+1, p.Name, p.Tier, p.Price, p.Currency)
	}
	return fmt.Sprintf(`The user was offered these plans:
%s
User reply: %q

Which plan did the user choose? Answer with JSON {"plan_index": <index above, or -1 if unclear>, "reply": "..."}.`, sb.String(), last)
}

func formatOptions(flights []models.FlightOption, hotels []models.HotelOption) string {
	var sb strings.Builder
	sb.WriteString("Here is what I found.\nFlights:")
	for i, f := range flights {
		fmt.Fprintf(&sb, "\n  %d. %s %s, %s %s -> %s %s, %.2f %s",
			i+1, f.Airline, f.FlightNumber,
			f.Origin, f.DepartAt.Format("Jan 2 15:04"),
			f.Destination, f.ArriveAt.Format("15:04"),
			f.Price, f.Currency)
	}
	sb.WriteString("\nHotels:")
	for i, h := range hotels {
		fmt.Fprintf(&sb, "\n  %d. %s (%.1f stars), %.2f %s per night, %.2f %s total",
			i+1, h.Name, h.Rating, h.PricePerNight, h.Currency, h.TotalPrice, h.Currency)
	}
	sb.WriteString("\nTell me which flight and hotel you want, e.g. \"flight 1 and hotel 2\".")
	return sb.String()
}

func selectPrompt(flights []models.FlightOption, hotels []models.HotelOption, last string) string {
	var sb strings.Builder
	sb.WriteString("Flights:\n")
	for i, f := range flights {
		fmt.Fprintf(&sb, "index %d: option %d %s %s %.2f %s\n", i, i+1, f.Airline, f.FlightNumber, f.Price, f.Currency)
	}
	sb.WriteString("Hotels:\n")
	for i, h := range hotels {
		fmt.Fprintf(&sb, "index %d: option %d %s %.2f %s total\n", i, i+1, h.Name, h.TotalPrice, h.Currency)
	}
	return fmt.Sprintf(`%s
User reply: %q

Which flight and hotel did the user pick? Answer with JSON
{"flight_index": <index or -1>, "hotel_index": <index or -1>, "reply": "..."}.`, sb.String(), last)
}

func summaryPrompt(st *models.TravelState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Requirements: %s\n", slotsJSON(st.Requirements))
	if p := st.ChosenTravelPlan(); p != nil {
		fmt.Fprintf(&sb, "Plan: %s (%s) - %s\n", p.Name, p.Tier, p.Details)
	}
	if f := st.SelectedFlight; f != nil {
		fmt.Fprintf(&sb, "Flight: %s %s departing %s\n", f.Airline, f.FlightNumber, f.DepartAt.Format(time.RFC1123))
	}
	if h := st.SelectedHotel; h != nil {
		fmt.Fprintf(&sb, "Hotel: %s, %s to %s\n", h.Name, h.CheckIn, h.CheckOut)
	}
	if b := st.Booking; b != nil {
		fmt.Fprintf(&sb, "Booking: %s, paid %.2f %s, invoice %s\n", b.Status, b.Amount, b.Currency, b.InvoiceID)
	}
	sb.WriteString("\nWrite a short, friendly itinerary summary for the traveller in plain text.")
	return sb.String()
}

func weatherPrompt(destination, last string, today time.Time) string {
	return fmt.Sprintf(`Today is %s. The trip destination is %q.
User message: %q

Which city and date does the user want the weather for? Answer with JSON {"location": "...", "date": "YYYY-MM-DD or empty"}.
Use the trip destination when no city is named.`, today.Format("2006-01-02"), destination, last)
}

func modifyPrompt(r models.Requirements, last string) string {
	return fmt.Sprintf(`The user wants to change the trip requirements.
Current requirements: %s
User input: %q

Answer with JSON:
{"updated_slots": {"destination": "", "origin": "", "depart_date": "", "return_date": "", "budget": "", "people": "", "notes": ""},
 "replan_required": true|false,
 "reply": "..."}
Changing destination, dates or origin requires a new plan; a budget change usually does; adding notes does not.`, slotsJSON(r), last)
}
