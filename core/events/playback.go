package events

import "time"

const (
	// KindPlaybackFinished identifies the end of playback for an utterance.
	KindPlaybackFinished Kind = "playback.finished"
	// KindTick identifies the periodic clock tick.
	KindTick Kind = "clock.tick"
)

// PlaybackFinished marks the end of playback for the named utterance, whether
// it ran to completion or was interrupted.
type PlaybackFinished struct {
	Base
	UtteranceID string
}

// NewPlaybackFinished creates a playback finished event.
func NewPlaybackFinished(utteranceID string) PlaybackFinished {
	return PlaybackFinished{Base: NewBase(KindPlaybackFinished), UtteranceID: utteranceID}
}

// Tick carries the loop's current time for timer-driven transitions.
type Tick struct {
	Base
	Now time.Time
}

// NewTick creates a clock tick event.
func NewTick(now time.Time) Tick {
	return Tick{Base: NewBase(KindTick), Now: now}
}
