package orchestration

import (
	"time"

	"github.com/google/uuid"
)

// Phase enumerates the conversation phases. Exactly one phase is current at
// any time and only the reducer moves between them.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseListening             Phase = "listening"
	PhaseAwaitingTranscription Phase = "waiting_stt"
	PhaseAwaitingChat          Phase = "waiting_chat"
	PhaseSpeaking              Phase = "speaking"
	PhaseSummarizing           Phase = "summarizing"
	PhaseEmergencyStopped      Phase = "emergency_stopped"
)

// Exchange is one user/assistant round kept in the in-memory session buffer.
// The buffer only ever feeds the session summary; raw text is never persisted.
type Exchange struct {
	User      string
	Assistant string
}

// State is the orchestrator's whole world, carried as a value through the
// reducer. I/O code never touches it; the loop hands out copies only.
type State struct {
	Phase Phase

	// Live correlation ids, one per provider kind. A provider completion
	// whose id does not match the live id for its kind is stale and is
	// discarded without effect.
	LiveTranscriptionID string
	LiveChatID          string
	LiveSummaryID       string

	// SpeakingUtteranceID names the utterance currently being played back,
	// empty outside the speaking phase.
	SpeakingUtteranceID string

	// PendingUserText holds the transcript awaiting an assistant reply so the
	// exchange can be buffered once the reply lands.
	PendingUserText string

	LastActivity time.Time
	Session      []Exchange
	Greeted      bool
}

// NewState returns the initial idle state.
func NewState(now time.Time) State {
	return State{Phase: PhaseIdle, LastActivity: now}
}

func (s State) clearLiveRequests() State {
	s.LiveTranscriptionID = ""
	s.LiveChatID = ""
	s.LiveSummaryID = ""
	return s
}

// IDSource produces correlation and utterance ids. It is injected so the
// reducer stays deterministic under test.
type IDSource interface {
	NewID() string
}

type uuidSource struct{}

func (uuidSource) NewID() string { return uuid.NewString() }

// NewUUIDSource returns the production id source.
func NewUUIDSource() IDSource { return uuidSource{} }
