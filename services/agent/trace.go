package agent

import (
	"context"
	"sync"
	"time"

	"wanderly/models"
	ai "wanderly/services/intelligence"
	"wanderly/utils"

	"go.uber.org/zap"
)

// NodeTiming is one executed node of a run.
type NodeTiming struct {
	Node       string      `json:"node"`
	Step       models.Step `json:"step"`
	DurationMs float64     `json:"duration_ms"`
}

// LLMTiming is one model call made by a node.
type LLMTiming struct {
	Task       string  `json:"task"`
	DurationMs float64 `json:"duration_ms"`
	Failed     bool    `json:"failed,omitempty"`
}

// RunTrace records where the time of one Chat or Resume went.
type RunTrace struct {
	ThreadID    string       `json:"thread_id"`
	Kind        string       `json:"kind"`
	Nodes       []NodeTiming `json:"nodes"`
	LLMCalls    []LLMTiming  `json:"llm_calls,omitempty"`
	Routes      []string     `json:"routes,omitempty"`
	Interrupted string       `json:"interrupted,omitempty"`
	TotalMs     float64      `json:"total_ms"`
	Error       string       `json:"error,omitempty"`
}

func (t *RunTrace) LLMTime() float64 {
	var ms float64
	for _, c := range t.LLMCalls {
		ms += c.DurationMs
	}
	return ms
}

// tracer sits in front of the caller's Emitter. It stamps node_end events
// with their duration and collects a RunTrace.
type tracer struct {
	mu      sync.Mutex
	now     func() time.Time
	begun   time.Time
	started map[string]time.Time
	trace   RunTrace
	next    Emitter
}

func newTracer(threadID, kind string, now func() time.Time, next Emitter) *tracer {
	if now == nil {
		now = time.Now
	}
	return &tracer{
		now:     now,
		begun:   now(),
		started: make(map[string]time.Time),
		trace:   RunTrace{ThreadID: threadID, Kind: kind, Nodes: []NodeTiming{}},
		next:    next,
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func (t *tracer) emit(ev models.AgentEvent) {
	t.mu.Lock()
	switch ev.Type {
	case models.EventNodeStart:
		t.started[ev.Node] = t.now()
	case models.EventNodeEnd:
		ms := millis(t.now().Sub(t.started[ev.Node]))
		t.trace.Nodes = append(t.trace.Nodes, NodeTiming{Node: ev.Node, Step: ev.Step, DurationMs: ms})
		data := make(map[string]any, len(ev.Data)+1)
		for k, v := range ev.Data {
			data[k] = v
		}
		data["duration_ms"] = ms
		ev.Data = data
	case models.EventRoute:
		t.trace.Routes = append(t.trace.Routes, ev.Node+"->"+ev.Content)
	case models.EventInterrupt:
		t.trace.Interrupted = ev.Node
	}
	t.mu.Unlock()
	t.next.emit(ev)
}

func (t *tracer) recordLLM(task string, d time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trace.LLMCalls = append(t.trace.LLMCalls, LLMTiming{Task: task, DurationMs: millis(d), Failed: err != nil})
}

// finish closes the trace and logs a one-line summary of the run.
func (t *tracer) finish(runErr error) *RunTrace {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trace.TotalMs = millis(t.now().Sub(t.begun))
	if runErr != nil {
		t.trace.Error = runErr.Error()
	}

	nodes := make([]string, 0, len(t.trace.Nodes))
	for _, n := range t.trace.Nodes {
		nodes = append(nodes, n.Node)
	}
	utils.GetLogger().Info("Agent run finished",
		zap.String("thread", t.trace.ThreadID),
		zap.String("kind", t.trace.Kind),
		zap.Strings("nodes", nodes),
		zap.Int("llmCalls", len(t.trace.LLMCalls)),
		zap.Float64("llmMs", t.trace.LLMTime()),
		zap.Float64("totalMs", t.trace.TotalMs),
		zap.String("interrupted", t.trace.Interrupted),
		zap.String("error", t.trace.Error),
	)
	out := t.trace
	out.Nodes = append([]NodeTiming(nil), t.trace.Nodes...)
	out.LLMCalls = append([]LLMTiming(nil), t.trace.LLMCalls...)
	out.Routes = append([]string(nil), t.trace.Routes...)
	return &out
}

type tracerKey struct{}

func withTracer(ctx context.Context, t *tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, t)
}

func tracerFrom(ctx context.Context) *tracer {
	t, _ := ctx.Value(tracerKey{}).(*tracer)
	return t
}

// timedLLM reports every model call to the run's tracer, if there is one.
type timedLLM struct {
	llm ai.LLM
	now func() time.Time
}

func (l timedLLM) observe(ctx context.Context, task string, call func() (string, error)) (string, error) {
	t := tracerFrom(ctx)
	if t == nil {
		return call()
	}
	start := l.now()
	out, err := call()
	t.recordLLM(task, l.now().Sub(start), err)
	return out, err
}

func (l timedLLM) Complete(ctx context.Context, req ai.Request) (string, error) {
	return l.observe(ctx, req.Task, func() (string, error) { return l.llm.Complete(ctx, req) })
}

func (l timedLLM) Stream(ctx context.Context, req ai.Request, onChunk func(string)) (string, error) {
	return l.observe(ctx, req.Task, func() (string, error) { return l.llm.Stream(ctx, req, onChunk) })
}
