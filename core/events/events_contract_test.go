package events

import (
	"errors"
	"testing"
	"time"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	errBoom := errors.New("boom")

	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "push to talk pressed", event: NewOperatorPushToTalkPressed(), expected: KindOperatorPushToTalkPressed},
		{name: "push to talk released", event: NewOperatorPushToTalkReleased(), expected: KindOperatorPushToTalkReleased},
		{name: "emergency stop", event: NewOperatorEmergencyStop(), expected: KindOperatorEmergencyStop},
		{name: "resume", event: NewOperatorResume(), expected: KindOperatorResume},
		{name: "force reset", event: NewOperatorForceReset(), expected: KindOperatorForceReset},
		{name: "transcription succeeded", event: NewTranscriptionSucceeded("req-1", "hello"), expected: KindTranscriptionSucceeded},
		{name: "transcription failed", event: NewTranscriptionFailed("req-1", errBoom), expected: KindTranscriptionFailed},
		{name: "chat succeeded", event: NewChatSucceeded("req-2", "hi"), expected: KindChatSucceeded},
		{name: "chat failed", event: NewChatFailed("req-2", errBoom), expected: KindChatFailed},
		{name: "summary succeeded", event: NewSummarySucceeded("req-3"), expected: KindSummarySucceeded},
		{name: "summary failed", event: NewSummaryFailed("req-3", errBoom), expected: KindSummaryFailed},
		{name: "playback finished", event: NewPlaybackFinished("utt-1"), expected: KindPlaybackFinished},
		{name: "tick", event: NewTick(time.Unix(0, 0)), expected: KindTick},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestProviderEventsPreserveCorrelationID(t *testing.T) {
	if got := NewTranscriptionSucceeded("req-9", "text").RequestID; got != "req-9" {
		t.Fatalf("expected request id to round-trip, got %q", got)
	}
	if got := NewChatFailed("req-10", errors.New("timeout")).RequestID; got != "req-10" {
		t.Fatalf("expected request id to round-trip, got %q", got)
	}
}
