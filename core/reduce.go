package orchestration

import (
	"strings"
	"time"

	"github.com/hanagata/kioskd/core/events"
)

// FallbackLines are the scripted utterances spoken when a provider fails, so
// the visitor always gets an answer instead of a stall.
type FallbackLines struct {
	// Misheard is spoken when transcription fails or comes back empty.
	Misheard string
	// Unavailable is spoken when the chat model fails.
	Unavailable string
}

// Reducer holds the static policy the pure transition function closes over.
// It performs no I/O; every call with identical inputs yields identical
// outputs.
type Reducer struct {
	IdleTimeout time.Duration
	Fallbacks   FallbackLines
}

// Reduce applies one event to the state and returns the next state plus the
// effects to execute. now and ids are injected so the function stays
// deterministic and replayable.
func (r Reducer) Reduce(state State, event events.Event, now time.Time, ids IDSource) (State, []Effect) {
	// Emergency stop outranks everything, whatever the phase. Live ids are
	// dropped so late completions for the interrupted turn land stale.
	if _, ok := event.(events.OperatorEmergencyStop); ok {
		state = state.clearLiveRequests()
		state.Phase = PhaseEmergencyStopped
		state.SpeakingUtteranceID = ""
		state.PendingUserText = ""
		return state, []Effect{StopOutput{}, SetExpression{Name: "neutral"}, BroadcastSnapshot{}}
	}

	switch e := event.(type) {
	case events.OperatorResume:
		if state.Phase != PhaseEmergencyStopped {
			return state, nil
		}
		state.Phase = PhaseIdle
		state.LastActivity = now
		return state, []Effect{SetExpression{Name: "neutral"}, BroadcastSnapshot{}}

	case events.OperatorForceReset:
		if state.Phase == PhaseEmergencyStopped {
			// Only an explicit resume leaves the stopped phase.
			return state, nil
		}
		state = state.clearLiveRequests()
		state.Phase = PhaseIdle
		state.SpeakingUtteranceID = ""
		state.PendingUserText = ""
		state.Session = nil
		state.LastActivity = now
		return state, []Effect{StopOutput{}, SetExpression{Name: "neutral"}, BroadcastSnapshot{}}

	case events.OperatorPushToTalkPressed:
		if state.Phase == PhaseEmergencyStopped || state.Phase == PhaseListening {
			return state, nil
		}
		// Pressing mid-turn abandons the turn in flight: live ids are
		// dropped so its late completions land stale, and any playback is
		// cut off. The background summary, if any, keeps running.
		var effects []Effect
		if state.Phase == PhaseSpeaking {
			effects = append(effects, StopOutput{})
		}
		effects = append(effects, StartRecording{}, SetExpression{Name: "listening"})
		state.LiveTranscriptionID = ""
		state.LiveChatID = ""
		state.SpeakingUtteranceID = ""
		state.PendingUserText = ""
		if !state.Greeted {
			state.Greeted = true
			effects = append(effects, PlayMotion{Name: "greeting", InstanceID: ids.NewID()})
		}
		state.Phase = PhaseListening
		state.LastActivity = now
		return state, append(effects, BroadcastSnapshot{})

	case events.OperatorPushToTalkReleased:
		if state.Phase != PhaseListening {
			return state, nil
		}
		requestID := ids.NewID()
		state.Phase = PhaseAwaitingTranscription
		state.LiveTranscriptionID = requestID
		state.LastActivity = now
		return state, []Effect{StopRecording{}, BeginTranscription{RequestID: requestID}, BroadcastSnapshot{}}

	case events.TranscriptionSucceeded:
		if state.Phase != PhaseAwaitingTranscription || e.RequestID != state.LiveTranscriptionID {
			return state, nil
		}
		state.LiveTranscriptionID = ""
		if strings.TrimSpace(e.Transcript) == "" {
			return r.fallback(state, now, ids, r.Fallbacks.Misheard)
		}
		requestID := ids.NewID()
		state.Phase = PhaseAwaitingChat
		state.LiveChatID = requestID
		state.PendingUserText = e.Transcript
		state.LastActivity = now
		return state, []Effect{
			CallChat{RequestID: requestID, Prompt: e.Transcript, History: state.Session},
			SetExpression{Name: "thinking"},
			BroadcastSnapshot{},
		}

	case events.TranscriptionFailed:
		if state.Phase != PhaseAwaitingTranscription || e.RequestID != state.LiveTranscriptionID {
			return state, nil
		}
		state.LiveTranscriptionID = ""
		return r.fallback(state, now, ids, r.Fallbacks.Misheard)

	case events.ChatSucceeded:
		if state.Phase != PhaseAwaitingChat || e.RequestID != state.LiveChatID {
			return state, nil
		}
		state.LiveChatID = ""
		utteranceID := ids.NewID()
		state.Session = append(append([]Exchange(nil), state.Session...), Exchange{User: state.PendingUserText, Assistant: e.Reply})
		state.PendingUserText = ""
		state.Phase = PhaseSpeaking
		state.SpeakingUtteranceID = utteranceID
		state.LastActivity = now
		return state, []Effect{
			Speak{UtteranceID: utteranceID, Text: e.Reply},
			SetExpression{Name: "speaking"},
			BroadcastSnapshot{},
		}

	case events.ChatFailed:
		if state.Phase != PhaseAwaitingChat || e.RequestID != state.LiveChatID {
			return state, nil
		}
		state.LiveChatID = ""
		state.PendingUserText = ""
		return r.fallback(state, now, ids, r.Fallbacks.Unavailable)

	case events.PlaybackFinished:
		if state.Phase != PhaseSpeaking || e.UtteranceID != state.SpeakingUtteranceID {
			return state, nil
		}
		state.Phase = PhaseIdle
		state.SpeakingUtteranceID = ""
		state.LastActivity = now
		return state, []Effect{SetExpression{Name: "neutral"}, BroadcastSnapshot{}}

	case events.SummarySucceeded:
		if e.RequestID != state.LiveSummaryID {
			return state, nil
		}
		state.LiveSummaryID = ""
		if state.Phase == PhaseSummarizing {
			state.Phase = PhaseIdle
		}
		return state, nil

	case events.SummaryFailed:
		if e.RequestID != state.LiveSummaryID {
			return state, nil
		}
		state.LiveSummaryID = ""
		if state.Phase == PhaseSummarizing {
			state.Phase = PhaseIdle
		}
		return state, nil

	case events.Tick:
		if state.Phase != PhaseIdle || len(state.Session) == 0 {
			return state, nil
		}
		if r.IdleTimeout <= 0 || e.Now.Sub(state.LastActivity) < r.IdleTimeout {
			return state, nil
		}
		requestID := ids.NewID()
		summarize := SummarizeSession{RequestID: requestID, Exchanges: state.Session}
		state.Phase = PhaseSummarizing
		state.LiveSummaryID = requestID
		state.Session = nil
		state.Greeted = false
		state.LastActivity = e.Now
		return state, []Effect{summarize, BroadcastSnapshot{}}
	}

	return state, nil
}

// fallback scripts the standard recovery: apologise briefly and hand the
// conversation back to the visitor.
func (r Reducer) fallback(state State, now time.Time, ids IDSource, line string) (State, []Effect) {
	state.Phase = PhaseIdle
	state.SpeakingUtteranceID = ""
	state.PendingUserText = ""
	state.LastActivity = now
	return state, []Effect{
		Speak{UtteranceID: ids.NewID(), Text: line},
		SetExpression{Name: "apologetic"},
		BroadcastSnapshot{},
	}
}
