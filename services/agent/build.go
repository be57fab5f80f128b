package agent

import (
	"context"
	"errors"
	"time"

	"wanderly/models"
	"wanderly/services/booking"
	ai "wanderly/services/intelligence"
	"wanderly/services/search"
	"wanderly/services/weather"
)

// OrderLocker holds flights and hotels while the user pays.
type OrderLocker interface {
	LockFlight(ctx context.Context, threadID, userID string, f models.FlightOption) (*models.Order, error)
	LockHotel(ctx context.Context, threadID, userID string, h models.HotelOption) (*models.Order, error)
	Verify(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) error
	Revert(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	ThreadOrders(ctx context.Context, threadID string) ([]models.Order, error)
	LockTTL() time.Duration
}

// LockScheduler arranges for locks to expire when the user never pays.
type LockScheduler interface {
	ScheduleLockExpiry(ctx context.Context, payload models.LockExpiryPayload, after time.Duration) error
}

// Deps are the collaborators the nodes call. Guides and Scheduler are optional.
type Deps struct {
	LLM       ai.LLM
	Search    search.Provider
	Guides    search.GuideSearcher
	Weather   weather.Provider
	Orders    OrderLocker
	Payments  booking.PaymentGateway
	Rules     *booking.RuleEngine
	Scheduler LockScheduler
	Currency  string
	Now       func() time.Time
}

func (d Deps) validate() error {
	var errs []error
	if d.LLM == nil {
		errs = append(errs, errors.New("agent needs an LLM"))
	}
	if d.Search == nil {
		errs = append(errs, errors.New("agent needs a search provider"))
	}
	if d.Weather == nil {
		errs = append(errs, errors.New("agent needs a weather provider"))
	}
	if d.Orders == nil {
		errs = append(errs, errors.New("agent needs an order service"))
	}
	if d.Payments == nil {
		errs = append(errs, errors.New("agent needs a payment gateway"))
	}
	return errors.Join(errs...)
}

type nodes struct {
	deps Deps
}

func (n *nodes) now() time.Time {
	if n.deps.Now != nil {
		return n.deps.Now()
	}
	return time.Now()
}

func stepIs(step models.Step, target string) RouteFunc {
	return func(st *models.TravelState) string {
		if st.Step == step {
			return target
		}
		return End
	}
}

// NewTravelGraph wires the booking conversation graph.
func NewTravelGraph(deps Deps) (*CompiledGraph, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Currency == "" {
		deps.Currency = "USD"
	}
	if deps.Rules == nil {
		deps.Rules = booking.NewRuleEngine()
	}
	deps.LLM = timedLLM{llm: deps.LLM, now: time.Now}
	n := &nodes{deps: deps}

	g := NewGraph()
	g.AddNode(NodeIntentRouter, n.intentRouter)
	g.AddNode(NodeCollect, n.collect)
	g.AddNode(NodePlan, n.plan)
	g.AddNode(NodeReview, n.review)
	g.AddNode(NodeSearch, n.search)
	g.AddNode(NodeSelect, n.selectOptions)
	g.AddNode(NodePay, n.pay)
	g.AddNode(NodeAwaitPayment, n.awaitPayment)
	g.AddNode(NodeConfirmPayment, n.confirmPayment)
	g.AddNode(NodeSummary, n.summary)
	g.AddNode(NodeSideChat, n.sideChat)
	g.AddNode(NodeCheckWeather, n.checkWeather)
	g.AddNode(NodeModify, n.modify)

	g.SetEntryPoint(NodeIntentRouter)
	g.AddConditionalEdges(NodeIntentRouter,
		func(st *models.TravelState) string { return RouteNextStep(st.RouterDecision, st.Step) },
		map[string]string{
			NodeModify:       NodeModify,
			NodeSideChat:     NodeSideChat,
			NodeCheckWeather: NodeCheckWeather,
			NodeCollect:      NodeCollect,
			NodePlan:         NodePlan,
			NodeReview:       NodeReview,
			NodeSearch:       NodeSearch,
			NodeSelect:       NodeSelect,
			NodeAwaitPayment: NodeAwaitPayment,
			NodeSummary:      NodeSummary,
		})

	g.AddConditionalEdges(NodeCollect, stepIs(models.StepPlan, NodePlan), map[string]string{NodePlan: NodePlan, End: End})
	g.AddEdge(NodePlan, End)
	g.AddConditionalEdges(NodeReview, stepIs(models.StepSearching, NodeSearch), map[string]string{NodeSearch: NodeSearch, End: End})
	g.AddEdge(NodeSearch, End)
	g.AddConditionalEdges(NodeSelect, stepIs(models.StepPaying, NodePay), map[string]string{NodePay: NodePay, End: End})
	g.AddConditionalEdges(NodePay, stepIs(models.StepPaying, NodeConfirmPayment), map[string]string{NodeConfirmPayment: NodeConfirmPayment, End: End})
	g.AddConditionalEdges(NodeAwaitPayment, stepIs(models.StepPaying, NodeConfirmPayment), map[string]string{NodeConfirmPayment: NodeConfirmPayment, End: End})
	g.AddConditionalEdges(NodeConfirmPayment, stepIs(models.StepFinished, NodeSummary), map[string]string{NodeSummary: NodeSummary, End: End})
	g.AddEdge(NodeSummary, End)
	g.AddEdge(NodeSideChat, End)
	g.AddEdge(NodeCheckWeather, End)
	g.AddConditionalEdges(NodeModify, stepIs(models.StepPlan, NodePlan), map[string]string{NodePlan: NodePlan, End: End})

	g.InterruptBefore(NodeConfirmPayment)
	return g.Compile()
}

// say appends an assistant message and streams it to the client.
func say(st *models.TravelState, emit Emitter, node, text string) {
	msg := st.AddAssistant(node, text)
	emit.emit(models.AgentEvent{Type: models.EventMessage, Node: node, Step: st.Step, Content: msg.Content})
}
