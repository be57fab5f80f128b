package agent

import (
	"context"
	"fmt"

	"wanderly/models"
	ai "wanderly/services/intelligence"
	"wanderly/utils"

	"go.uber.org/zap"
)

// Node names.
const (
	NodeIntentRouter   = "intent_router"
	NodeCollect        = "collect"
	NodePlan           = "plan"
	NodeReview         = "review"
	NodeSearch         = "search"
	NodeSelect         = "select"
	NodePay            = "pay"
	NodeAwaitPayment   = "await_payment"
	NodeConfirmPayment = "confirm_payment"
	NodeSummary        = "summary"
	NodeSideChat       = "side_chat"
	NodeCheckWeather   = "check_weather"
	NodeModify         = "modify"
)

// RouteNextStep picks the node that handles the user's turn. Side branches win
// over the main flow; a continue resumes the node that owns the current step.
func RouteNextStep(decision models.Decision, step models.Step) string {
	switch decision {
	case models.DecisionModify:
		return NodeModify
	case models.DecisionSideChat:
		return NodeSideChat
	case models.DecisionCheckWeather:
		return NodeCheckWeather
	}

	switch step {
	case models.StepPlan:
		return NodePlan
	case models.StepReview:
		return NodeReview
	case models.StepSearching:
		return NodeSearch
	case models.StepSelecting:
		return NodeSelect
	case models.StepPaying:
		return NodeAwaitPayment
	case models.StepFinished:
		return NodeSummary
	default:
		return NodeCollect
	}
}

type routerOutput struct {
	Decision models.Decision `json:"decision"`
	Reason   string          `json:"reason"`
}

func (n *nodes) intentRouter(ctx context.Context, st *models.TravelState, _ Emitter) error {
	last := st.LastUserMessage()
	if last == "" {
		st.RouterDecision = models.DecisionContinue
		return nil
	}

	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeIntentRouter,
		System: systemPrompt,
		Prompt: routerPrompt(st.Step, last),
		JSON:   true,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	var out routerOutput
	if err := ai.DecodeJSON(raw, &out); err != nil || !out.Decision.Valid() {
		utils.GetLogger().Warn("Router returned an unusable decision, continuing",
			zap.String("thread", st.ThreadID),
			zap.String("raw", raw),
		)
		out.Decision = models.DecisionContinue
	}

	st.RouterDecision = out.Decision
	utils.GetLogger().Info("Router decision",
		zap.String("thread", st.ThreadID),
		zap.String("step", string(st.Step)),
		zap.String("decision", string(out.Decision)),
		zap.String("reason", out.Reason),
	)
	return nil
}
