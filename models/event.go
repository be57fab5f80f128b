package models

// Agent event types streamed to clients while a turn runs.
const (
	EventNodeStart = "node_start"
	EventNodeEnd   = "node_end"
	EventRoute     = "route"
	EventMessage   = "message"
	EventToken     = "token"
	EventInterrupt = "interrupt"
	EventError     = "error"
	EventDone      = "done"
)

type AgentEvent struct {
	Type    string         `json:"type"`
	Node    string         `json:"node,omitempty"`
	Step    Step           `json:"step,omitempty"`
	Content string         `json:"content,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
