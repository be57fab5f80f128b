package agent

import (
	"context"
	"fmt"
	"strings"

	"wanderly/models"
	ai "wanderly/services/intelligence"
	"wanderly/utils"

	"go.uber.org/zap"
)

type slotsOutput struct {
	UpdatedSlots models.Requirements `json:"updated_slots"`
	IsComplete   bool                `json:"is_complete"`
	Reply        string              `json:"reply"`
}

func (n *nodes) collect(ctx context.Context, st *models.TravelState, emit Emitter) error {
	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeCollect,
		System: systemPrompt,
		Prompt: collectPrompt(st.Requirements, st.LastUserMessage(), n.now()),
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var out slotsOutput
	if err := ai.DecodeJSON(raw, &out); err != nil {
		return err
	}

	st.Requirements.Merge(out.UpdatedSlots)
	reply := strings.TrimSpace(out.Reply)

	// The model's is_complete is advisory; the slots decide.
	if st.Requirements.Complete() {
		st.Step = models.StepPlan
		if reply == "" {
			reply = "Thanks, I have everything I need. Preparing some plans for you..."
		}
	} else {
		if out.IsComplete {
			utils.GetLogger().Debug("Model claimed complete requirements",
				zap.String("thread", st.ThreadID),
				zap.Strings("missing", st.Requirements.Missing()))
		}
		if reply == "" {
			reply = "Could you tell me your " + strings.ReplaceAll(strings.Join(st.Requirements.Missing(), ", "), "_", " ") + "?"
		}
	}
	say(st, emit, NodeCollect, reply)
	return nil
}

type planOutput struct {
	Plans     []models.TravelPlan `json:"plans"`
	ReplyText string              `json:"reply_text"`
}

const maxPlans = 3

func (n *nodes) plan(ctx context.Context, st *models.TravelState, emit Emitter) error {
	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodePlan,
		System: systemPrompt,
		Prompt: planPrompt(st.Requirements, n.deps.Currency),
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var out planOutput
	if err := ai.DecodeJSON(raw, &out); err != nil {
		return err
	}
	if len(out.Plans) == 0 {
		st.Step = models.StepPlan
		say(st, emit, NodePlan, "Sorry, I could not put together any plans this time. Say \"try again\" and I will have another go.")
		return nil
	}
	if len(out.Plans) > maxPlans {
		out.Plans = out.Plans[:maxPlans]
	}
	for i := range out.Plans {
		out.Plans[i].ID = i + 1
		if out.Plans[i].Currency == "" {
			out.Plans[i].Currency = n.deps.Currency
		}
	}

	st.ResetPlanning()
	st.Booking = nil
	st.Plans = out.Plans
	st.Step = models.StepReview

	intro := strings.TrimSpace(out.ReplyText)
	if intro == "" {
		intro = "I have prepared these options for you:"
	}
	say(st, emit, NodePlan, formatPlans(intro, st.Plans))
	return nil
}

type reviewOutput struct {
	PlanIndex int    `json:"plan_index"`
	Reply     string `json:"reply"`
}

func (n *nodes) review(ctx context.Context, st *models.TravelState, emit Emitter) error {
	if len(st.Plans) == 0 {
		st.Step = models.StepPlan
		say(st, emit, NodeReview, "Sorry, the plan data seems to be missing. Let me prepare new plans.")
		return nil
	}

	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeReview,
		System: systemPrompt,
		Prompt: reviewPrompt(st.Plans, st.LastUserMessage()),
		JSON:   true,
	})
	if err != nil {
		return err
	}
	out := reviewOutput{PlanIndex: -1}
	if err := ai.DecodeJSON(raw, &out); err != nil {
		return err
	}

	if out.PlanIndex < 0 || out.PlanIndex >= len(st.Plans) {
		reply := strings.TrimSpace(out.Reply)
		if reply == "" {
			reply = fmt.Sprintf("Which plan would you like? Please pick a number from 1 to %d.", len(st.Plans))
		}
		say(st, emit, NodeReview, reply)
		return nil
	}

	idx := out.PlanIndex
	st.ChosenPlan = &idx
	st.Step = models.StepSearching
	chosen := st.Plans[idx]
	say(st, emit, NodeReview, fmt.Sprintf("Great, you chose %q. Looking for flights and hotels now...", chosen.Name))
	return nil
}
