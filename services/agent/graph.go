package agent

import (
	"context"
	"errors"
	"fmt"

	"wanderly/models"
)

// End is the virtual terminal node.
const End = "__end__"

// MaxSteps bounds the number of nodes a single run may execute.
const MaxSteps = 25

var (
	ErrStepLimit   = errors.New("graph exceeded the step limit")
	ErrUnknownNode = errors.New("unknown graph node")
	ErrNoRoute     = errors.New("route returned a key with no target")
)

// Emitter receives progress events while a run executes. A nil Emitter drops them.
type Emitter func(models.AgentEvent)

func (e Emitter) emit(ev models.AgentEvent) {
	if e != nil {
		e(ev)
	}
}

// NodeFunc mutates the working state in place.
type NodeFunc func(ctx context.Context, st *models.TravelState, emit Emitter) error

// RouteFunc picks a key of a conditional edge's target map.
type RouteFunc func(st *models.TravelState) string

type branch struct {
	route   RouteFunc
	targets map[string]string
}

// Graph is the mutable builder. Configuration errors are reported by Compile.
type Graph struct {
	nodes      map[string]NodeFunc
	order      []string
	edges      map[string]string
	branches   map[string]branch
	entry      string
	interrupts map[string]bool
	errs       []error
}

func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]NodeFunc),
		edges:      make(map[string]string),
		branches:   make(map[string]branch),
		interrupts: make(map[string]bool),
	}
}

func (g *Graph) AddNode(name string, fn NodeFunc) {
	switch {
	case name == "" || name == End:
		g.errs = append(g.errs, fmt.Errorf("invalid node name %q", name))
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %s has no function", name))
	case g.nodes[name] != nil:
		g.errs = append(g.errs, fmt.Errorf("node %s added twice", name))
	default:
		g.nodes[name] = fn
		g.order = append(g.order, name)
	}
}

func (g *Graph) AddEdge(from, to string) {
	if _, dup := g.edges[from]; dup {
		g.errs = append(g.errs, fmt.Errorf("node %s already has an edge", from))
		return
	}
	g.edges[from] = to
}

func (g *Graph) AddConditionalEdges(from string, route RouteFunc, targets map[string]string) {
	if route == nil || len(targets) == 0 {
		g.errs = append(g.errs, fmt.Errorf("conditional edges of %s need a route and targets", from))
		return
	}
	if _, dup := g.branches[from]; dup {
		g.errs = append(g.errs, fmt.Errorf("node %s already has conditional edges", from))
		return
	}
	copied := make(map[string]string, len(targets))
	for k, v := range targets {
		copied[k] = v
	}
	g.branches[from] = branch{route: route, targets: copied}
}

func (g *Graph) SetEntryPoint(name string) {
	g.entry = name
}

// InterruptBefore pauses a run in front of the named nodes until it is resumed.
func (g *Graph) InterruptBefore(names ...string) {
	for _, n := range names {
		g.interrupts[n] = true
	}
}

func (g *Graph) known(name string) bool {
	return name == End || g.nodes[name] != nil
}

func (g *Graph) Compile() (*CompiledGraph, error) {
	errs := append([]error(nil), g.errs...)

	if g.entry == "" {
		errs = append(errs, errors.New("entry point not set"))
	} else if g.nodes[g.entry] == nil {
		errs = append(errs, fmt.Errorf("entry point %s is not a node", g.entry))
	}
	for from, to := range g.edges {
		if g.nodes[from] == nil {
			errs = append(errs, fmt.Errorf("edge from unknown node %s", from))
		}
		if !g.known(to) {
			errs = append(errs, fmt.Errorf("edge %s -> unknown node %s", from, to))
		}
		if _, both := g.branches[from]; both {
			errs = append(errs, fmt.Errorf("node %s has both a static and a conditional edge", from))
		}
	}
	for from, b := range g.branches {
		if g.nodes[from] == nil {
			errs = append(errs, fmt.Errorf("conditional edges from unknown node %s", from))
		}
		for key, to := range b.targets {
			if !g.known(to) {
				errs = append(errs, fmt.Errorf("route %s[%s] -> unknown node %s", from, key, to))
			}
		}
	}
	for _, name := range g.order {
		_, static := g.edges[name]
		_, cond := g.branches[name]
		if !static && !cond {
			errs = append(errs, fmt.Errorf("node %s has no outgoing edge", name))
		}
	}
	for name := range g.interrupts {
		if g.nodes[name] == nil {
			errs = append(errs, fmt.Errorf("interrupt before unknown node %s", name))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid graph: %w", errors.Join(errs...))
	}
	return &CompiledGraph{g: g}, nil
}

// CompiledGraph is a validated graph ready to run.
type CompiledGraph struct {
	g *Graph
}

func (c *CompiledGraph) Entry() string {
	return c.g.entry
}

func (c *CompiledGraph) IsInterrupt(name string) bool {
	return c.g.interrupts[name]
}

// Run executes nodes from start until End or an interrupt. When resume is set
// the first node runs even if it is an interrupt point. PendingNode is set on
// interrupt. A resumed interrupt is consumed once its node succeeds, so a
// failure later in the run cannot replay it; if the resumed node itself fails
// it stays pending.
func (c *CompiledGraph) Run(ctx context.Context, st *models.TravelState, start string, resume bool, emit Emitter) error {
	node := start
	steps := 0
	first := true
	resumed := ""

	for node != End {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.g.interrupts[node] && !(resume && first) {
			st.PendingNode = node
			emit.emit(models.AgentEvent{Type: models.EventInterrupt, Node: node, Step: st.Step})
			return nil
		}
		if resume && first && st.PendingNode == node {
			resumed = node
			st.PendingNode = ""
		}
		first = false

		steps++
		if steps > MaxSteps {
			return fmt.Errorf("%w (%d) at node %s", ErrStepLimit, MaxSteps, node)
		}
		fn := c.g.nodes[node]
		if fn == nil {
			return fmt.Errorf("%w: %s", ErrUnknownNode, node)
		}

		emit.emit(models.AgentEvent{Type: models.EventNodeStart, Node: node, Step: st.Step})
		if err := fn(ctx, st, emit); err != nil {
			if node == resumed {
				st.PendingNode = resumed
			}
			return fmt.Errorf("node %s: %w", node, err)
		}
		resumed = ""
		emit.emit(models.AgentEvent{Type: models.EventNodeEnd, Node: node, Step: st.Step})

		next, err := c.next(node, st)
		if err != nil {
			return err
		}
		if _, cond := c.g.branches[node]; cond {
			emit.emit(models.AgentEvent{Type: models.EventRoute, Node: node, Step: st.Step, Content: next})
		}
		node = next
	}

	st.PendingNode = ""
	return nil
}

func (c *CompiledGraph) next(node string, st *models.TravelState) (string, error) {
	if to, ok := c.g.edges[node]; ok {
		return to, nil
	}
	b := c.g.branches[node]
	key := b.route(st)
	to, ok := b.targets[key]
	if !ok {
		return "", fmt.Errorf("%w: %s routed to %q", ErrNoRoute, node, key)
	}
	return to, nil
}
