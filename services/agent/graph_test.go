package agent

import (
	"context"
	"errors"
	"testing"

	"wanderly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(name string, visited *[]string) NodeFunc {
	return func(_ context.Context, _ *models.TravelState, _ Emitter) error {
		*visited = append(*visited, name)
		return nil
	}
}

func TestCompileValidates(t *testing.T) {
	noop := func(context.Context, *models.TravelState, Emitter) error { return nil }

	g := NewGraph()
	g.AddNode("a", noop)
	_, err := g.Compile()
	assert.Error(t, err, "missing entry and edge")

	g = NewGraph()
	g.AddNode("a", noop)
	g.SetEntryPoint("a")
	g.AddEdge("a", "ghost")
	_, err = g.Compile()
	assert.ErrorContains(t, err, "ghost")

	g = NewGraph()
	g.AddNode("a", noop)
	g.SetEntryPoint("a")
	g.AddEdge("a", End)
	g.AddConditionalEdges("a", func(*models.TravelState) string { return "x" }, map[string]string{"x": End})
	_, err = g.Compile()
	assert.ErrorContains(t, err, "both")

	g = NewGraph()
	g.AddNode("a", noop)
	g.AddNode("a", noop)
	g.SetEntryPoint("a")
	g.AddEdge("a", End)
	_, err = g.Compile()
	assert.ErrorContains(t, err, "twice")
}

func TestRunFollowsEdgesAndInterrupts(t *testing.T) {
	var visited []string
	g := NewGraph()
	g.AddNode("a", trace("a", &visited))
	g.AddNode("b", trace("b", &visited))
	g.AddNode("c", trace("c", &visited))
	g.SetEntryPoint("a")
	g.AddConditionalEdges("a", func(st *models.TravelState) string { return string(st.Step) },
		map[string]string{"collect": "b", "plan": End})
	g.AddEdge("b", "c")
	g.AddEdge("c", End)
	g.InterruptBefore("c")
	cg, err := g.Compile()
	require.NoError(t, err)

	var events []models.AgentEvent
	st := models.NewTravelState("t", "")
	require.NoError(t, cg.Run(context.Background(), st, cg.Entry(), false, func(e models.AgentEvent) { events = append(events, e) }))
	assert.Equal(t, []string{"a", "b"}, visited)
	assert.Equal(t, "c", st.PendingNode)
	assert.Equal(t, models.EventInterrupt, events[len(events)-1].Type)

	require.NoError(t, cg.Run(context.Background(), st, st.PendingNode, true, nil))
	assert.Equal(t, []string{"a", "b", "c"}, visited)
	assert.Empty(t, st.PendingNode)

	st.Step = models.StepPlan
	visited = nil
	require.NoError(t, cg.Run(context.Background(), st, "a", false, nil))
	assert.Equal(t, []string{"a"}, visited)
}

func TestRunErrors(t *testing.T) {
	noop := func(context.Context, *models.TravelState, Emitter) error { return nil }

	g := NewGraph()
	g.AddNode("a", noop)
	g.SetEntryPoint("a")
	g.AddConditionalEdges("a", func(*models.TravelState) string { return "nowhere" }, map[string]string{"x": End})
	cg, err := g.Compile()
	require.NoError(t, err)
	assert.ErrorIs(t, cg.Run(context.Background(), models.NewTravelState("t", ""), "a", false, nil), ErrNoRoute)

	loop := NewGraph()
	loop.AddNode("a", noop)
	loop.SetEntryPoint("a")
	loop.AddEdge("a", "a")
	cg, err = loop.Compile()
	require.NoError(t, err)
	assert.ErrorIs(t, cg.Run(context.Background(), models.NewTravelState("t", ""), "a", false, nil), ErrStepLimit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, cg.Run(ctx, models.NewTravelState("t", ""), "a", false, nil), context.Canceled)
}

func TestResumedInterruptIsConsumed(t *testing.T) {
	failAfter := true
	failGate := true
	g := NewGraph()
	g.AddNode("gate", func(context.Context, *models.TravelState, Emitter) error {
		if failGate {
			return errors.New("gate down")
		}
		return nil
	})
	g.AddNode("after", func(context.Context, *models.TravelState, Emitter) error {
		if failAfter {
			return errors.New("after down")
		}
		return nil
	})
	g.SetEntryPoint("gate")
	g.AddEdge("gate", "after")
	g.AddEdge("after", End)
	g.InterruptBefore("gate")
	cg, err := g.Compile()
	require.NoError(t, err)

	st := models.NewTravelState("t", "")
	require.NoError(t, cg.Run(context.Background(), st, cg.Entry(), false, nil))
	require.Equal(t, "gate", st.PendingNode)

	// The resumed node failing keeps the interrupt so the caller can retry.
	assert.Error(t, cg.Run(context.Background(), st, "gate", true, nil))
	assert.Equal(t, "gate", st.PendingNode)

	// Once it succeeds a later failure does not bring the interrupt back.
	failGate = false
	assert.ErrorContains(t, cg.Run(context.Background(), st, "gate", true, nil), "after down")
	assert.Empty(t, st.PendingNode)
}

func TestMermaid(t *testing.T) {
	cg, err := NewTravelGraph(newTestDeps(newFakeLLM()))
	require.NoError(t, err)
	out := cg.Mermaid()
	assert.Contains(t, out, "flowchart TD")
	assert.Contains(t, out, "__start__ --> intent_router")
	assert.Contains(t, out, "intent_router -.->|modify| modify")
	assert.Contains(t, out, "collect -.->|end| __end__")
	assert.Contains(t, out, "side_chat --> __end__")
	assert.Contains(t, out, "class confirm_payment interrupt")
}
