package llm

import "context"

// Sampling temperatures used by the extraction flows.
const (
	Precise  float64 = 0.3
	Creative float64 = 0.7
)

// DefaultMaxTokens is the output budget for a single extraction call.
const DefaultMaxTokens = 4000

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64 // nil leaves the provider default
	JSON        bool     // ask for a JSON object when the provider supports it
}

// Provider is a hosted model that turns a prompt into text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Temp returns a pointer for Request.Temperature.
func Temp(t float64) *float64 { return &t }
