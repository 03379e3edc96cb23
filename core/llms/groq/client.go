package groq

import (
	"context"

	"github.com/hanagata/kioskd/core/llms"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "llama-3.3-70b-versatile"

// Client is a thin configuration wrapper around the prompt calls for callers
// that hold one api key and model for the lifetime of the process.
type Client struct {
	apiKey       string
	model        string
	instructions string
}

type ClientOption func(*Client)

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithInstructions sets the system prompt sent with every call.
func WithInstructions(instructions string) ClientOption {
	return func(c *Client) {
		c.instructions = instructions
	}
}

// NewClient creates a configured client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{apiKey: apiKey, model: DefaultModel}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Prompt sends one prompt with the prior turns and returns the response text.
func (c *Client) Prompt(ctx context.Context, prompt string, turns []llms.Turn) (string, error) {
	return Prompt(ctx, c.apiKey, c.model, prompt,
		llms.WithInstructions(c.instructions),
		llms.WithTurns(turns),
	)
}
