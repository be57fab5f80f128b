package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no text candidate.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// Request is a single prompt sent to the model.
type Request struct {
	// Task names the calling node ("router", "collect", ...). Used for logging and by fakes.
	Task   string
	System string
	Prompt string
	// JSON asks the model to answer with a JSON object only.
	JSON bool
}

// LLM is the language model the agent nodes talk to.
type LLM interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Stream calls onChunk for every partial text and returns the full answer.
	Stream(ctx context.Context, req Request, onChunk func(string)) (string, error)
}
