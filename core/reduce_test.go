package orchestration

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/hanagata/kioskd/core/events"
)

type sequentialIDs struct {
	next int
}

func (s *sequentialIDs) NewID() string {
	s.next++
	return fmt.Sprintf("id-%d", s.next)
}

func testReducer() Reducer {
	return Reducer{
		IdleTimeout: 30 * time.Second,
		Fallbacks: FallbackLines{
			Misheard:    "Sorry, I did not catch that.",
			Unavailable: "Sorry, I cannot answer right now.",
		},
	}
}

func effectsOfType[T Effect](effects []Effect) []T {
	var matched []T
	for _, effect := range effects {
		if typed, ok := effect.(T); ok {
			matched = append(matched, typed)
		}
	}
	return matched
}

// drive pushes a full successful turn to the speaking phase and returns the
// state plus the live utterance id.
func driveToSpeaking(t *testing.T, r Reducer, ids IDSource, now time.Time) State {
	t.Helper()

	state := NewState(now)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)
	state, _ = r.Reduce(state, events.NewTranscriptionSucceeded(state.LiveTranscriptionID, "hello there"), now, ids)
	state, effects := r.Reduce(state, events.NewChatSucceeded(state.LiveChatID, "Hi! How can I help?"), now, ids)

	if state.Phase != PhaseSpeaking {
		t.Fatalf("expected speaking phase, got %q", state.Phase)
	}
	if speaks := effectsOfType[Speak](effects); len(speaks) != 1 {
		t.Fatalf("expected one speak effect, got %d", len(speaks))
	}
	return state
}

func TestReduceIsDeterministic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()

	run := func() (State, []Effect) {
		ids := &sequentialIDs{}
		state := NewState(now)
		state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
		return r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)
	}

	firstState, firstEffects := run()
	secondState, secondEffects := run()

	if !reflect.DeepEqual(firstState, secondState) {
		t.Fatalf("expected identical states, got %+v and %+v", firstState, secondState)
	}
	if !reflect.DeepEqual(firstEffects, secondEffects) {
		t.Fatalf("expected identical effects, got %+v and %+v", firstEffects, secondEffects)
	}
}

func TestStaleCompletionIsDiscardedSilently(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(now)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)

	next, effects := r.Reduce(state, events.NewTranscriptionSucceeded("not-the-live-id", "ghost"), now, ids)

	if !reflect.DeepEqual(next, state) {
		t.Fatalf("expected state unchanged on stale completion, got %+v", next)
	}
	if len(effects) != 0 {
		t.Fatalf("expected no effects on stale completion, got %+v", effects)
	}
}

func TestSupersededTranscriptionRequestIsIgnored(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(now)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)
	firstID := state.LiveTranscriptionID

	// Pressing again mid-wait supersedes the first request.
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)
	secondID := state.LiveTranscriptionID

	if firstID == secondID {
		t.Fatalf("expected a fresh correlation id for the second request")
	}

	next, effects := r.Reduce(state, events.NewTranscriptionSucceeded(firstID, "late"), now, ids)
	if len(effects) != 0 || next.Phase != PhaseAwaitingTranscription {
		t.Fatalf("expected late result for superseded id to be a no-op, got phase %q effects %+v", next.Phase, effects)
	}

	next, effects = r.Reduce(next, events.NewTranscriptionSucceeded(secondID, "on time"), now, ids)
	if next.Phase != PhaseAwaitingChat {
		t.Fatalf("expected current result to advance to waiting_chat, got %q", next.Phase)
	}
	if calls := effectsOfType[CallChat](effects); len(calls) != 1 || calls[0].Prompt != "on time" {
		t.Fatalf("expected one chat call with the current transcript, got %+v", effects)
	}
}

func TestEmergencyStopWinsFromEveryPhase(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()

	states := map[string]State{
		"idle":      NewState(now),
		"listening": {Phase: PhaseListening, LastActivity: now},
		"waiting_stt": {
			Phase:               PhaseAwaitingTranscription,
			LiveTranscriptionID: "stt-1",
			LastActivity:        now,
		},
		"waiting_chat": {
			Phase:           PhaseAwaitingChat,
			LiveChatID:      "chat-1",
			PendingUserText: "hello",
			LastActivity:    now,
		},
		"speaking": {
			Phase:               PhaseSpeaking,
			SpeakingUtteranceID: "utt-1",
			LastActivity:        now,
		},
	}

	for name, state := range states {
		t.Run(name, func(t *testing.T) {
			ids := &sequentialIDs{}
			next, effects := r.Reduce(state, events.NewOperatorEmergencyStop(), now, ids)

			if next.Phase != PhaseEmergencyStopped {
				t.Fatalf("expected emergency_stopped, got %q", next.Phase)
			}
			if next.LiveTranscriptionID != "" || next.LiveChatID != "" || next.LiveSummaryID != "" {
				t.Fatalf("expected all live correlation ids cleared, got %+v", next)
			}
			if stops := effectsOfType[StopOutput](effects); len(stops) != 1 {
				t.Fatalf("expected one stop output effect, got %+v", effects)
			}

			// A completion for the interrupted turn must now land stale.
			after, afterEffects := r.Reduce(next, events.NewChatSucceeded("chat-1", "late reply"), now, ids)
			if after.Phase != PhaseEmergencyStopped || len(afterEffects) != 0 {
				t.Fatalf("expected late completion to be discarded, got phase %q effects %+v", after.Phase, afterEffects)
			}
		})
	}
}

func TestOnlyResumeLeavesEmergencyStop(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := State{Phase: PhaseEmergencyStopped, LastActivity: now}

	for _, event := range []events.Event{
		events.NewOperatorPushToTalkPressed(),
		events.NewOperatorForceReset(),
		events.NewTick(now.Add(time.Hour)),
	} {
		next, effects := r.Reduce(state, event, now, ids)
		if next.Phase != PhaseEmergencyStopped || len(effects) != 0 {
			t.Fatalf("expected %q to be ignored while stopped, got phase %q effects %+v", event.Kind(), next.Phase, effects)
		}
	}

	next, _ := r.Reduce(state, events.NewOperatorResume(), now, ids)
	if next.Phase != PhaseIdle {
		t.Fatalf("expected resume to return to idle, got %q", next.Phase)
	}
}

func TestTranscriptionFailureSpeaksScriptedFallback(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(now)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)

	state, effects := r.Reduce(state, events.NewTranscriptionFailed(state.LiveTranscriptionID, errors.New("timeout")), now, ids)

	if state.Phase != PhaseIdle {
		t.Fatalf("expected return to idle, got %q", state.Phase)
	}
	speaks := effectsOfType[Speak](effects)
	if len(speaks) != 1 {
		t.Fatalf("expected exactly one fallback speak effect, got %+v", effects)
	}
	if speaks[0].Text != r.Fallbacks.Misheard {
		t.Fatalf("expected the misheard fallback line, got %q", speaks[0].Text)
	}
}

func TestChatFailureSpeaksScriptedFallback(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(now)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)
	state, _ = r.Reduce(state, events.NewTranscriptionSucceeded(state.LiveTranscriptionID, "hi"), now, ids)

	state, effects := r.Reduce(state, events.NewChatFailed(state.LiveChatID, errors.New("provider down")), now, ids)

	if state.Phase != PhaseIdle {
		t.Fatalf("expected return to idle, got %q", state.Phase)
	}
	speaks := effectsOfType[Speak](effects)
	if len(speaks) != 1 || speaks[0].Text != r.Fallbacks.Unavailable {
		t.Fatalf("expected the unavailable fallback line, got %+v", effects)
	}
}

func TestEmptyTranscriptFallsBackLikeFailure(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(now)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)

	state, effects := r.Reduce(state, events.NewTranscriptionSucceeded(state.LiveTranscriptionID, "   "), now, ids)

	if state.Phase != PhaseIdle {
		t.Fatalf("expected return to idle on empty transcript, got %q", state.Phase)
	}
	if speaks := effectsOfType[Speak](effects); len(speaks) != 1 || speaks[0].Text != r.Fallbacks.Misheard {
		t.Fatalf("expected the misheard fallback line, got %+v", effects)
	}
}

func TestPlaybackFinishedReturnsToIdle(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := driveToSpeaking(t, r, ids, now)

	next, _ := r.Reduce(state, events.NewPlaybackFinished("wrong-utterance"), now, ids)
	if next.Phase != PhaseSpeaking {
		t.Fatalf("expected unknown utterance ack to be ignored, got %q", next.Phase)
	}

	next, _ = r.Reduce(state, events.NewPlaybackFinished(state.SpeakingUtteranceID), now, ids)
	if next.Phase != PhaseIdle || next.SpeakingUtteranceID != "" {
		t.Fatalf("expected idle after playback finished, got %+v", next)
	}
}

func TestIdleTimeoutEmitsExactlyOneSummarize(t *testing.T) {
	start := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := driveToSpeaking(t, r, ids, start)
	state, _ = r.Reduce(state, events.NewPlaybackFinished(state.SpeakingUtteranceID), start, ids)

	// Not yet timed out.
	early := start.Add(r.IdleTimeout - time.Second)
	state, effects := r.Reduce(state, events.NewTick(early), early, ids)
	if len(effects) != 0 {
		t.Fatalf("expected no effects before the idle timeout, got %+v", effects)
	}

	expired := start.Add(r.IdleTimeout + time.Second)
	state, effects = r.Reduce(state, events.NewTick(expired), expired, ids)

	summaries := effectsOfType[SummarizeSession](effects)
	if len(summaries) != 1 {
		t.Fatalf("expected exactly one summarize effect, got %+v", effects)
	}
	if len(summaries[0].Exchanges) != 1 {
		t.Fatalf("expected the session buffer in the summarize effect, got %+v", summaries[0])
	}
	if len(state.Session) != 0 {
		t.Fatalf("expected session buffer cleared, got %+v", state.Session)
	}

	// Re-ticking without new activity must not re-emit.
	later := expired.Add(time.Hour)
	state, effects = r.Reduce(state, events.NewTick(later), later, ids)
	if len(effectsOfType[SummarizeSession](effects)) != 0 {
		t.Fatalf("expected no second summarize effect, got %+v", effects)
	}

	// The async completion returns the phase to idle.
	state, _ = r.Reduce(state, events.NewSummarySucceeded(summaries[0].RequestID), later, ids)
	if state.Phase != PhaseIdle || state.LiveSummaryID != "" {
		t.Fatalf("expected idle after summary completion, got %+v", state)
	}
}

func TestIdleTimeoutWithEmptySessionDoesNothing(t *testing.T) {
	start := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(start)
	expired := start.Add(r.IdleTimeout * 2)
	next, effects := r.Reduce(state, events.NewTick(expired), expired, ids)

	if next.Phase != PhaseIdle || len(effects) != 0 {
		t.Fatalf("expected empty-session tick to be a no-op, got phase %q effects %+v", next.Phase, effects)
	}
}

func TestForceResetAbandonsTurnAndClearsBuffer(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := driveToSpeaking(t, r, ids, now)
	utterance := state.SpeakingUtteranceID

	state, effects := r.Reduce(state, events.NewOperatorForceReset(), now, ids)

	if state.Phase != PhaseIdle || len(state.Session) != 0 {
		t.Fatalf("expected idle with cleared session, got %+v", state)
	}
	if stops := effectsOfType[StopOutput](effects); len(stops) != 1 {
		t.Fatalf("expected stop output on force reset, got %+v", effects)
	}

	next, afterEffects := r.Reduce(state, events.NewPlaybackFinished(utterance), now, ids)
	if next.Phase != PhaseIdle || len(afterEffects) != 0 {
		t.Fatalf("expected stale playback ack to be ignored, got %+v", afterEffects)
	}
}

func TestGreetingMotionPlaysOncePerSession(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := testReducer()
	ids := &sequentialIDs{}

	state := NewState(now)
	state, effects := r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	if motions := effectsOfType[PlayMotion](effects); len(motions) != 1 || motions[0].Name != "greeting" {
		t.Fatalf("expected a greeting motion on first press, got %+v", effects)
	}

	state, _ = r.Reduce(state, events.NewOperatorPushToTalkReleased(), now, ids)
	state, _ = r.Reduce(state, events.NewTranscriptionFailed(state.LiveTranscriptionID, errors.New("x")), now, ids)

	_, effects = r.Reduce(state, events.NewOperatorPushToTalkPressed(), now, ids)
	if motions := effectsOfType[PlayMotion](effects); len(motions) != 0 {
		t.Fatalf("expected no second greeting motion, got %+v", effects)
	}
}
