package events

import "time"

// Kind tags each variant of the closed event set. The reducer dispatches on
// it, so every variant must carry a distinct kind.
type Kind string

// Event is anything that may enter the orchestrator's queue: operator input,
// provider completions, playback acks and clock ticks. State changes happen
// only in response to one of these.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind tag and the arrival stamp shared by every variant.
// The stamp records when the event was constructed, for logs and traces;
// time-dependent transitions such as the idle timeout run off the loop's
// injected clock instead, so reductions stay replayable.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
