package events

const (
	// KindTranscriptionSucceeded identifies a completed transcription request.
	KindTranscriptionSucceeded Kind = "provider.transcription_succeeded"
	// KindTranscriptionFailed identifies a failed or timed-out transcription request.
	KindTranscriptionFailed Kind = "provider.transcription_failed"
	// KindChatSucceeded identifies a completed chat request.
	KindChatSucceeded Kind = "provider.chat_succeeded"
	// KindChatFailed identifies a failed or timed-out chat request.
	KindChatFailed Kind = "provider.chat_failed"
	// KindSummarySucceeded identifies a completed session summary.
	KindSummarySucceeded Kind = "provider.summary_succeeded"
	// KindSummaryFailed identifies a failed session summary.
	KindSummaryFailed Kind = "provider.summary_failed"
)

// TranscriptionSucceeded carries the transcript for the correlated request.
type TranscriptionSucceeded struct {
	Base
	RequestID  string
	Transcript string
}

// NewTranscriptionSucceeded creates a transcription succeeded event.
func NewTranscriptionSucceeded(requestID, transcript string) TranscriptionSucceeded {
	return TranscriptionSucceeded{Base: NewBase(KindTranscriptionSucceeded), RequestID: requestID, Transcript: transcript}
}

// TranscriptionFailed marks a transcription error or deadline hit. Timeouts
// and provider errors share this shape so the reducer has a single failure path.
type TranscriptionFailed struct {
	Base
	RequestID string
	Err       error
}

// NewTranscriptionFailed creates a transcription failed event.
func NewTranscriptionFailed(requestID string, err error) TranscriptionFailed {
	return TranscriptionFailed{Base: NewBase(KindTranscriptionFailed), RequestID: requestID, Err: err}
}

// ChatSucceeded carries the assistant reply for the correlated request.
type ChatSucceeded struct {
	Base
	RequestID string
	Reply     string
}

// NewChatSucceeded creates a chat succeeded event.
func NewChatSucceeded(requestID, reply string) ChatSucceeded {
	return ChatSucceeded{Base: NewBase(KindChatSucceeded), RequestID: requestID, Reply: reply}
}

// ChatFailed marks a chat error or deadline hit.
type ChatFailed struct {
	Base
	RequestID string
	Err       error
}

// NewChatFailed creates a chat failed event.
func NewChatFailed(requestID string, err error) ChatFailed {
	return ChatFailed{Base: NewBase(KindChatFailed), RequestID: requestID, Err: err}
}

// SummarySucceeded marks a generated and persisted session summary.
type SummarySucceeded struct {
	Base
	RequestID string
}

// NewSummarySucceeded creates a summary succeeded event.
func NewSummarySucceeded(requestID string) SummarySucceeded {
	return SummarySucceeded{Base: NewBase(KindSummarySucceeded), RequestID: requestID}
}

// SummaryFailed marks a failed summary generation or persistence write.
type SummaryFailed struct {
	Base
	RequestID string
	Err       error
}

// NewSummaryFailed creates a summary failed event.
func NewSummaryFailed(requestID string, err error) SummaryFailed {
	return SummaryFailed{Base: NewBase(KindSummaryFailed), RequestID: requestID, Err: err}
}
