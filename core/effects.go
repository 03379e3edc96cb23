package orchestration

// Effect describes a side effect the reducer wants performed. Effects are
// pure data; the executor carries them out and feeds any outcome back into
// the loop as an event.
type Effect interface {
	isEffect()
}

// StartRecording begins microphone capture for the current take.
type StartRecording struct{}

// StopRecording ends microphone capture. The captured take stays with the
// executor until a BeginTranscription effect claims it.
type StopRecording struct{}

// BeginTranscription submits the captured take to speech-to-text under the
// given correlation id.
type BeginTranscription struct {
	RequestID string
}

// CallChat submits the user prompt (with session history) to the chat model
// under the given correlation id.
type CallChat struct {
	RequestID string
	Prompt    string
	History   []Exchange
}

// SummarizeSession submits the buffered session exchanges to the inner task
// model and persists the resulting summary.
type SummarizeSession struct {
	RequestID string
	Exchanges []Exchange
}

// Speak streams the text to the kiosk as an ordered utterance. The executor
// segments the text and prefetches synthesis per segment.
type Speak struct {
	UtteranceID string
	Text        string
}

// StopOutput halts any playing utterance immediately and discards every
// in-flight segment belonging to it.
type StopOutput struct{}

// SetExpression switches the avatar expression.
type SetExpression struct {
	Name string
}

// PlayMotion plays a named one-shot motion. InstanceID lets clients
// deduplicate redeliveries after a reconnect.
type PlayMotion struct {
	Name       string
	InstanceID string
}

// BroadcastSnapshot pushes the current public state to every connected role.
type BroadcastSnapshot struct{}

func (StartRecording) isEffect()     {}
func (StopRecording) isEffect()      {}
func (BeginTranscription) isEffect() {}
func (CallChat) isEffect()           {}
func (SummarizeSession) isEffect()   {}
func (Speak) isEffect()              {}
func (StopOutput) isEffect()         {}
func (SetExpression) isEffect()      {}
func (PlayMotion) isEffect()         {}
func (BroadcastSnapshot) isEffect()  {}
