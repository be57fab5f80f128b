package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wanderly/models"
	"wanderly/services/booking"
	"wanderly/services/checkpoint"
	"wanderly/utils"

	"go.uber.org/zap"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMissingThread    = errors.New("thread id is required")
	ErrNotInterrupted   = errors.New("conversation is not waiting for payment")
	ErrPaymentMismatch  = errors.New("payment does not belong to the pending booking")
	ErrInvalidPaymentEv = errors.New("payment status must be succeeded or failed")
	ErrUnverifiedPay    = errors.New("payment must be confirmed by the payment provider")
)

// TurnResult is what one user turn or payment callback produced.
type TurnResult struct {
	ThreadID    string                `json:"thread_id"`
	Replies     []models.Message      `json:"replies"`
	Step        models.Step           `json:"step"`
	Interrupted bool                  `json:"interrupted"`
	Next        string                `json:"next,omitempty"`
	Booking     *models.BookingResult `json:"booking,omitempty"`
	Trace       *RunTrace             `json:"trace,omitempty"`
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

// Agent runs the travel graph over checkpointed conversations.
type Agent struct {
	graph  *CompiledGraph
	store  checkpoint.Store
	orders OrderLocker
	clock  func() time.Time

	mu    sync.Mutex
	locks map[string]*threadLock
}

func New(deps Deps, store checkpoint.Store) (*Agent, error) {
	if store == nil {
		return nil, errors.New("agent needs a checkpoint store")
	}
	g, err := NewTravelGraph(deps)
	if err != nil {
		return nil, err
	}
	return &Agent{
		graph:  g,
		store:  store,
		orders: deps.Orders,
		clock:  time.Now,
		locks:  make(map[string]*threadLock),
	}, nil
}

func (a *Agent) Graph() *CompiledGraph {
	return a.graph
}

// Mermaid renders the compiled graph as a mermaid flowchart.
func (a *Agent) Mermaid() string {
	return a.graph.Mermaid()
}

// lockThread serialises turns of one conversation. A thread's lock lives only
// while someone holds or waits for it.
func (a *Agent) lockThread(threadID string) func() {
	a.mu.Lock()
	l, ok := a.locks[threadID]
	if !ok {
		l = &threadLock{}
		a.locks[threadID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(a.locks, threadID)
		}
		a.mu.Unlock()
	}
}

func (a *Agent) lockedThreads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}

// Chat runs one user turn from the intent router.
func (a *Agent) Chat(ctx context.Context, threadID, userID, text string, emit Emitter) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if threadID == "" {
		return nil, ErrMissingThread
	}
	unlock := a.lockThread(threadID)
	defer unlock()

	st, err := a.store.Get(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		st = models.NewTravelState(threadID, userID)
	} else if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if st.UserID == "" {
		st.UserID = userID
	}

	before := len(st.Messages)
	pending := st.PendingNode
	st.AddUser(text)
	st.RouterDecision = ""

	tr := newTracer(threadID, "chat", a.clock, emit)
	runErr := a.graph.Run(withTracer(ctx, tr), st, a.graph.Entry(), false, tr.emit)

	// A side question while a payment is pending must not drop the interrupt.
	if runErr == nil && pending != "" && st.PendingNode == "" && st.Step == models.StepPaying {
		st.PendingNode = pending
	}
	return a.finish(ctx, st, before, runErr, tr)
}

// Resume feeds a payment callback into a conversation paused before confirm_payment.
func (a *Agent) Resume(ctx context.Context, ev models.PaymentEvent, emit Emitter) (*TurnResult, error) {
	if ev.ThreadID == "" {
		return nil, ErrMissingThread
	}
	if ev.Status != models.PaymentSucceeded && ev.Status != models.PaymentFailed {
		return nil, ErrInvalidPaymentEv
	}
	unlock := a.lockThread(ev.ThreadID)
	defer unlock()

	st, err := a.store.Get(ctx, ev.ThreadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown thread %s", ErrNotInterrupted, ev.ThreadID)
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if st.PendingNode != NodeConfirmPayment {
		return nil, ErrNotInterrupted
	}
	if st.Booking != nil && ev.PaymentID != "" && st.Booking.PaymentID != "" && ev.PaymentID != st.Booking.PaymentID {
		return nil, ErrPaymentMismatch
	}
	if st.Booking != nil && st.Booking.Provider == booking.ProviderStripe && ev.Source != models.PaymentSourceStripe {
		utils.GetLogger().Warn("Rejected unverified payment event for a Stripe booking",
			zap.String("thread", ev.ThreadID), zap.String("payment", ev.PaymentID), zap.String("source", ev.Source))
		return nil, ErrUnverifiedPay
	}

	before := len(st.Messages)
	event := ev
	st.PaymentEvent = &event
	utils.GetLogger().Info("Resuming conversation after payment",
		zap.String("thread", ev.ThreadID),
		zap.String("payment", ev.PaymentID),
		zap.String("status", ev.Status),
	)

	tr := newTracer(ev.ThreadID, "resume", a.clock, emit)
	runErr := a.graph.Run(withTracer(ctx, tr), st, st.PendingNode, true, tr.emit)
	return a.finish(ctx, st, before, runErr, tr)
}

// finish persists the state whether or not the run failed so the user turn is never lost.
func (a *Agent) finish(ctx context.Context, st *models.TravelState, before int, runErr error, tr *tracer) (*TurnResult, error) {
	trace := tr.finish(runErr)
	st.UpdatedAt = time.Now()
	saveErr := a.store.Put(context.WithoutCancel(ctx), st)
	if saveErr != nil {
		utils.GetLogger().Error("Failed to save checkpoint", zap.String("thread", st.ThreadID), zap.Error(saveErr))
	}

	if runErr != nil {
		utils.GetLogger().Error("Agent run failed", zap.String("thread", st.ThreadID), zap.Error(runErr))
		tr.next.emit(models.AgentEvent{Type: models.EventError, Step: st.Step, Content: runErr.Error()})
		return nil, runErr
	}
	if saveErr != nil {
		return nil, fmt.Errorf("save checkpoint: %w", saveErr)
	}

	res := &TurnResult{
		ThreadID:    st.ThreadID,
		Step:        st.Step,
		Interrupted: st.PendingNode != "",
		Next:        st.PendingNode,
		Booking:     st.Booking,
		Trace:       trace,
	}
	for _, m := range st.Messages[before:] {
		if m.Role == models.RoleAssistant {
			res.Replies = append(res.Replies, m)
		}
	}
	return res, nil
}

// State returns the stored conversation or checkpoint.ErrNotFound.
func (a *Agent) State(ctx context.Context, threadID string) (*models.TravelState, error) {
	return a.store.Get(ctx, threadID)
}

func (a *Agent) Reset(ctx context.Context, threadID string) error {
	unlock := a.lockThread(threadID)
	defer unlock()
	return a.store.Delete(ctx, threadID)
}

// Orders lists the flight and hotel orders a conversation has locked or booked, newest first.
func (a *Agent) Orders(ctx context.Context, threadID string) ([]models.Order, error) {
	if threadID == "" {
		return nil, ErrMissingThread
	}
	return a.orders.ThreadOrders(ctx, threadID)
}
