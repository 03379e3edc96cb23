package llms

// PromptOptions carries the optional inputs shared by prompt-style calls.
type PromptOptions struct {
	// Instructions is the system prompt prepended to the conversation.
	Instructions string
	// Turns is the prior conversation history, earliest first.
	Turns []Turn
	// Stream is called for each streamed response chunk when set.
	Stream func(string)
}

// PromptOption modifies the prompt options.
type PromptOption func(*PromptOptions)

// WithInstructions sets the system prompt.
func WithInstructions(instructions string) PromptOption {
	return func(o *PromptOptions) {
		o.Instructions = instructions
	}
}

// WithTurns sets the prior conversation history.
func WithTurns(turns []Turn) PromptOption {
	return func(o *PromptOptions) {
		o.Turns = turns
	}
}

// WithStream sets the streamed-chunk callback.
func WithStream(stream func(string)) PromptOption {
	return func(o *PromptOptions) {
		o.Stream = stream
	}
}
