package synth

import "context"

// Completion is a single chat-style request
type Completion struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int

	// JSON asks the model for a JSON object response
	JSON bool

	// Subject is a short description of the request, used by mock clients
	Subject string
}

// Client produces model completions
type Client interface {
	Complete(ctx context.Context, c Completion) (string, error)
}
