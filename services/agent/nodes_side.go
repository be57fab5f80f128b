package agent

import (
	"context"
	"fmt"
	"strings"

	"wanderly/models"
	ai "wanderly/services/intelligence"
	"wanderly/services/search"
	"wanderly/utils"

	"go.uber.org/zap"
)

func (n *nodes) sideChat(ctx context.Context, st *models.TravelState, emit Emitter) error {
	question := st.LastUserMessage()

	prompt := question
	if n.deps.Guides != nil {
		res, err := n.deps.Guides.SearchGuides(ctx, question)
		if err != nil {
			utils.GetLogger().Warn("Guide search failed", zap.String("thread", st.ThreadID), zap.Error(err))
		} else if guide := search.FormatGuide(res); guide != "" {
			prompt = fmt.Sprintf("Web search results:\n%s\n\nUser question: %s", guide, question)
		}
	}

	answer, err := n.deps.LLM.Stream(ctx, ai.Request{
		Task:   NodeSideChat,
		System: sideChatSystem,
		Prompt: prompt,
	}, func(chunk string) {
		emit.emit(models.AgentEvent{Type: models.EventToken, Node: NodeSideChat, Step: st.Step, Content: chunk})
	})
	if err != nil {
		return err
	}
	say(st, emit, NodeSideChat, strings.TrimSpace(answer))
	return nil
}

type weatherQuery struct {
	Location string `json:"location"`
	Date     string `json:"date"`
}

func (n *nodes) checkWeather(ctx context.Context, st *models.TravelState, emit Emitter) error {
	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeCheckWeather,
		Prompt: weatherPrompt(st.Requirements.Destination, st.LastUserMessage(), n.now()),
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var q weatherQuery
	if err := ai.DecodeJSON(raw, &q); err != nil {
		return err
	}
	q.Location = strings.TrimSpace(q.Location)
	if q.Location == "" {
		q.Location = st.Requirements.Destination
	}
	if q.Location == "" {
		say(st, emit, NodeCheckWeather, "Which city would you like the weather for?")
		return nil
	}

	report, err := n.deps.Weather.Report(ctx, q.Location, strings.TrimSpace(q.Date))
	if err != nil {
		utils.GetLogger().Warn("Weather lookup failed",
			zap.String("thread", st.ThreadID), zap.String("location", q.Location), zap.Error(err))
		say(st, emit, NodeCheckWeather, fmt.Sprintf("Sorry, I could not get the weather for %s: %v", q.Location, err))
		return nil
	}
	say(st, emit, NodeCheckWeather, strings.TrimRight(report.String(), "\n"))
	return nil
}

type modifyOutput struct {
	UpdatedSlots   models.Requirements `json:"updated_slots"`
	ReplanRequired bool                `json:"replan_required"`
	Reply          string              `json:"reply"`
}

// modify applies requirement changes. A held booking is released; a change that
// needs new plans goes to plan when the requirements are complete, else back to collect.
func (n *nodes) modify(ctx context.Context, st *models.TravelState, emit Emitter) error {
	raw, err := n.deps.LLM.Complete(ctx, ai.Request{
		Task:   NodeModify,
		System: systemPrompt,
		Prompt: modifyPrompt(st.Requirements, st.LastUserMessage()),
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var out modifyOutput
	if err := ai.DecodeJSON(raw, &out); err != nil {
		return err
	}
	st.Requirements.Merge(out.UpdatedSlots)

	if b := st.Booking; b != nil && b.Status == models.BookingAwaitingPayment {
		n.releaseBooking(ctx, b)
		b.Status = models.BookingReleased
		if st.Step == models.StepPaying {
			st.Step = models.StepSelecting
		}
	}

	switch {
	case out.ReplanRequired && st.Requirements.Complete():
		st.ResetPlanning()
		st.Booking = nil
		st.Step = models.StepPlan
	case out.ReplanRequired:
		st.Step = models.StepCollect
	}

	reply := strings.TrimSpace(out.Reply)
	if reply == "" {
		reply = "Got it, I have updated your trip."
	}
	say(st, emit, NodeModify, reply)
	utils.GetLogger().Info("Requirements modified",
		zap.String("thread", st.ThreadID),
		zap.Bool("replan", out.ReplanRequired),
		zap.String("step", string(st.Step)))
	return nil
}
