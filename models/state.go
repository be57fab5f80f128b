package models

import (
	"strings"
	"time"
)

// Step is the stage of the booking conversation.
type Step string

const (
	StepCollect   Step = "collect"
	StepPlan      Step = "plan"
	StepReview    Step = "review"
	StepSearching Step = "searching"
	StepSelecting Step = "selecting"
	StepPaying    Step = "paying"
	StepFinished  Step = "finished"
)

func (s Step) Valid() bool {
	switch s {
	case StepCollect, StepPlan, StepReview, StepSearching, StepSelecting, StepPaying, StepFinished:
		return true
	}
	return false
}

// Decision is the router's classification of the latest user message.
type Decision string

const (
	DecisionContinue     Decision = "continue"
	DecisionModify       Decision = "modify"
	DecisionSideChat     Decision = "side_chat"
	DecisionCheckWeather Decision = "check_weather"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionContinue, DecisionModify, DecisionSideChat, DecisionCheckWeather:
		return true
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of the conversation transcript.
type Message struct {
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Node      string    `bson:"node,omitempty" json:"node,omitempty"` // node that produced an assistant message
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Requirements are the slots the collect step fills in.
type Requirements struct {
	Destination string `bson:"destination,omitempty" json:"destination,omitempty"`
	Origin      string `bson:"origin,omitempty" json:"origin,omitempty"`
	DepartDate  string `bson:"departDate,omitempty" json:"depart_date,omitempty"`
	ReturnDate  string `bson:"returnDate,omitempty" json:"return_date,omitempty"`
	Budget      string `bson:"budget,omitempty" json:"budget,omitempty"`
	People      string `bson:"people,omitempty" json:"people,omitempty"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Missing lists the required slots that are still empty.
func (r Requirements) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(r.Origin) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(r.DepartDate) == "" {
		missing = append(missing, "depart_date")
	}
	if strings.TrimSpace(r.Budget) == "" {
		missing = append(missing, "budget")
	}
	return missing
}

func (r Requirements) Complete() bool {
	return len(r.Missing()) == 0
}

// Merge overwrites slots with the non-empty values of u.
func (r *Requirements) Merge(u Requirements) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&r.Destination, u.Destination)
	set(&r.Origin, u.Origin)
	set(&r.DepartDate, u.DepartDate)
	set(&r.ReturnDate, u.ReturnDate)
	set(&r.Budget, u.Budget)
	set(&r.People, u.People)
	set(&r.Notes, u.Notes)
}

// TravelState is the checkpointed state of one conversation thread.
type TravelState struct {
	ThreadID string    `bson:"threadId" json:"thread_id"`
	UserID   string    `bson:"userId,omitempty" json:"user_id,omitempty"`
	Messages []Message `bson:"messages" json:"messages"`

	Step         Step         `bson:"step" json:"step"`
	Requirements Requirements `bson:"requirements" json:"requirements"`

	Plans      []TravelPlan `bson:"plans,omitempty" json:"plans,omitempty"`
	ChosenPlan *int         `bson:"chosenPlan,omitempty" json:"chosen_plan,omitempty"`

	FlightOptions  []FlightOption `bson:"flightOptions,omitempty" json:"flight_options,omitempty"`
	HotelOptions   []HotelOption  `bson:"hotelOptions,omitempty" json:"hotel_options,omitempty"`
	SelectedFlight *FlightOption  `bson:"selectedFlight,omitempty" json:"selected_flight,omitempty"`
	SelectedHotel  *HotelOption   `bson:"selectedHotel,omitempty" json:"selected_hotel,omitempty"`

	Booking      *BookingResult `bson:"booking,omitempty" json:"booking,omitempty"`
	PaymentEvent *PaymentEvent  `bson:"paymentEvent,omitempty" json:"payment_event,omitempty"`

	RouterDecision Decision `bson:"routerDecision,omitempty" json:"router_decision,omitempty"`
	// PendingNode is the node the graph stopped in front of; empty when not interrupted.
	PendingNode string `bson:"pendingNode,omitempty" json:"pending_node,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// NewTravelState returns an empty conversation positioned at the collect step.
func NewTravelState(threadID, userID string) *TravelState {
	now := time.Now()
	return &TravelState{
		ThreadID:  threadID,
		UserID:    userID,
		Step:      StepCollect,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LastUserMessage returns the content of the most recent user message, or "".
func (s *TravelState) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

func (s *TravelState) AddUser(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: text, CreatedAt: time.Now()})
}

func (s *TravelState) AddAssistant(node, text string) Message {
	msg := Message{Role: RoleAssistant, Content: text, Node: node, CreatedAt: time.Now()}
	s.Messages = append(s.Messages, msg)
	return msg
}

// ChosenTravelPlan returns the plan the user picked, if any.
func (s *TravelState) ChosenTravelPlan() *TravelPlan {
	if s.ChosenPlan == nil || *s.ChosenPlan < 0 || *s.ChosenPlan >= len(s.Plans) {
		return nil
	}
	return &s.Plans[*s.ChosenPlan]
}

// ResetPlanning drops everything derived from the requirements.
func (s *TravelState) ResetPlanning() {
	s.Plans = nil
	s.ChosenPlan = nil
	s.FlightOptions = nil
	s.HotelOptions = nil
	s.SelectedFlight = nil
	s.SelectedHotel = nil
}

// Clone returns a deep copy so stores never share slices with callers.
func (s *TravelState) Clone() *TravelState {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.Plans = append([]TravelPlan(nil), s.Plans...)
	c.FlightOptions = append([]FlightOption(nil), s.FlightOptions...)
	c.HotelOptions = append([]HotelOption(nil), s.HotelOptions...)
	if s.ChosenPlan != nil {
		v := *s.ChosenPlan
		c.ChosenPlan = &v
	}
	if s.SelectedFlight != nil {
		v := *s.SelectedFlight
		c.SelectedFlight = &v
	}
	if s.SelectedHotel != nil {
		v := *s.SelectedHotel
		c.SelectedHotel = &v
	}
	if s.Booking != nil {
		v := *s.Booking
		v.ReviewReasons = append([]string(nil), s.Booking.ReviewReasons...)
		c.Booking = &v
	}
	if s.PaymentEvent != nil {
		v := *s.PaymentEvent
		c.PaymentEvent = &v
	}
	return &c
}
