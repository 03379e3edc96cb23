package orchestration

import "sync"

// PlaybackSegment is one ordered piece of an utterance, immutable once
// emitted. Clients play segments of an utterance in strictly increasing
// Index order and deduplicate redeliveries by CommandID.
type PlaybackSegment struct {
	UtteranceID string `json:"utterance_id"`
	Index       int    `json:"segment_index"`
	Text        string `json:"text"`
	Audio       []byte `json:"audio,omitempty"`
	IsLast      bool   `json:"is_last"`
	CommandID   string `json:"command_id"`
}

// sequencer releases segments strictly in index order. Out-of-order offers
// are buffered, never released early and never skipped. It backs both the
// pipeline's dispatch order and the client-side playback consumer contract.
type sequencer struct {
	mu      sync.Mutex
	next    int
	pending map[int]PlaybackSegment
	out     chan PlaybackSegment
}

// newSequencer creates a sequencer for an utterance with the given segment
// count. The output channel is sized to hold every segment, so Offer never
// blocks.
func newSequencer(segmentCount int) *sequencer {
	return &sequencer{
		pending: make(map[int]PlaybackSegment),
		out:     make(chan PlaybackSegment, segmentCount),
	}
}

// Offer hands a segment to the sequencer. The segment is released once every
// lower-indexed segment has been released before it.
func (s *sequencer) Offer(segment PlaybackSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[segment.Index] = segment
	for {
		ready, ok := s.pending[s.next]
		if !ok {
			return
		}
		delete(s.pending, s.next)
		s.next++
		s.out <- ready
	}
}

// Ordered exposes the strictly ordered segment stream.
func (s *sequencer) Ordered() <-chan PlaybackSegment {
	return s.out
}
