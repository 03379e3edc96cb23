package orchestration

import "context"

// SpeechToText transcribes one captured audio take. Implementations must
// respect ctx cancellation and must not retry on their own; retry policy
// belongs to the executor.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// ChatModel produces the assistant reply for a prompt with session history.
type ChatModel interface {
	Reply(ctx context.Context, prompt string, history []Exchange) (string, error)
}

// SessionSummary is the structured output of the summarize inner task.
type SessionSummary struct {
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
}

// Summarizer condenses a finished session into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, exchanges []Exchange) (SessionSummary, error)
}

// SummaryWriter persists a pending session summary. Failures degrade to a
// logged summary-failed event and never stall the conversation.
type SummaryWriter interface {
	WritePendingSummary(ctx context.Context, summary SessionSummary) error
}

// AudioCapture records one microphone take between Start and Stop.
type AudioCapture interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
}

// Speaker streams an utterance to the kiosk as ordered segments and can cut
// it off mid-playback.
type Speaker interface {
	Speak(utteranceID, text string)
	Stop()
}

// Broadcaster pushes avatar commands and state snapshots to connected roles.
type Broadcaster interface {
	Snapshot(state State)
	SetExpression(name string)
	PlayMotion(name, instanceID string)
}
