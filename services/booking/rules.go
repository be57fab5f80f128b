package booking

import (
	"fmt"
	"strings"
	"time"
)

type Action string

const (
	ActionPass   Action = "pass"
	ActionBlock  Action = "block"
	ActionReview Action = "review"
)

// Booking tool names the rules are evaluated for.
const (
	ToolBookFlight = "book_flight"
	ToolBookHotel  = "book_hotel"
)

// BookingAction describes what the agent is about to book.
type BookingAction struct {
	Tool        string
	Destination string
	Amount      float64
	Currency    string
}

type RuleResult struct {
	Action Action
	Rule   string
	Reason string
}

// Err returns a *RuleViolation for blocked results and nil otherwise.
func (r RuleResult) Err() error {
	if r.Action != ActionBlock {
		return nil
	}
	return &RuleViolation{Rule: r.Rule, Reason: r.Reason}
}

type Rule interface {
	Name() string
	Evaluate(a BookingAction) RuleResult
}

// NightCurfewRule blocks booking tools between StartHour and EndHour (wrapping midnight).
type NightCurfewRule struct {
	StartHour int
	EndHour   int
	Now       func() time.Time
}

func (r NightCurfewRule) Name() string { return "night_curfew" }

func (r NightCurfewRule) Evaluate(a BookingAction) RuleResult {
	if !strings.HasPrefix(a.Tool, "book_") {
		return RuleResult{Action: ActionPass, Rule: r.Name()}
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	h := now().Hour()
	if h >= r.StartHour || h < r.EndHour {
		return RuleResult{
			Action: ActionBlock,
			Rule:   r.Name(),
			Reason: fmt.Sprintf("bookings are closed between %02d:00 and %02d:00", r.StartHour, r.EndHour),
		}
	}
	return RuleResult{Action: ActionPass, Rule: r.Name()}
}

// SensitiveLocationRule blocks bookings to destinations on the blocklist.
type SensitiveLocationRule struct {
	Blocked []string
}

func (r SensitiveLocationRule) Name() string { return "sensitive_location" }

func (r SensitiveLocationRule) Evaluate(a BookingAction) RuleResult {
	dest := strings.TrimSpace(a.Destination)
	for _, b := range r.Blocked {
		if dest != "" && strings.EqualFold(dest, strings.TrimSpace(b)) {
			return RuleResult{
				Action: ActionBlock,
				Rule:   r.Name(),
				Reason: fmt.Sprintf("destination %s is in a high-risk area and cannot be booked", dest),
			}
		}
	}
	return RuleResult{Action: ActionPass, Rule: r.Name()}
}

// HighAmountRule flags bookings above Threshold for manual review.
type HighAmountRule struct {
	Threshold float64
}

func (r HighAmountRule) Name() string { return "high_amount" }

func (r HighAmountRule) Evaluate(a BookingAction) RuleResult {
	if r.Threshold > 0 && a.Amount > r.Threshold {
		return RuleResult{
			Action: ActionReview,
			Rule:   r.Name(),
			Reason: fmt.Sprintf("%s of %.2f %s exceeds %.2f and needs review", a.Tool, a.Amount, a.Currency, r.Threshold),
		}
	}
	return RuleResult{Action: ActionPass, Rule: r.Name()}
}

// RuleEngine runs rules in order: the first BLOCK wins immediately,
// otherwise the last REVIEW, otherwise PASS.
type RuleEngine struct {
	rules []Rule
}

func NewRuleEngine(rules ...Rule) *RuleEngine {
	return &RuleEngine{rules: rules}
}

// DefaultRuleEngine wires the curfew, sensitive-location and high-amount rules.
func DefaultRuleEngine(reviewAmount float64, blocked []string, now func() time.Time) *RuleEngine {
	return NewRuleEngine(
		NightCurfewRule{StartHour: 23, EndHour: 6, Now: now},
		SensitiveLocationRule{Blocked: blocked},
		HighAmountRule{Threshold: reviewAmount},
	)
}

func (e *RuleEngine) Evaluate(a BookingAction) RuleResult {
	final := RuleResult{Action: ActionPass, Reason: "auto approved"}
	for _, rule := range e.rules {
		res := rule.Evaluate(a)
		switch res.Action {
		case ActionBlock:
			return res
		case ActionReview:
			final = res
		}
	}
	return final
}
