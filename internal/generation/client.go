package generation

import "context"

// Client is the boundary to an external language model. Implementations send
// a single prompt and return the model's raw text output.
type Client interface {
	// Generate returns the raw completion text for prompt. Errors should wrap
	// one of the sentinels in errors.go.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model identifies the backend model, e.g. "gpt-3.5-turbo" or "mock".
	Model() string
}
