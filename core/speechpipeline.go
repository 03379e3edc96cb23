package orchestration

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

const defaultPrefetchLimit = 3

// SegmentSynthesizer produces playable audio for one text segment.
type SegmentSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SegmentSink receives ordered playback commands, usually the realtime hub.
type SegmentSink interface {
	PlaySegment(segment PlaybackSegment)
}

// SpeechPipeline turns one assistant reply into ordered playback segments.
// Segments are synthesized in parallel ahead of need, but dispatched to the
// sink strictly in index order, so playback can start before the whole reply
// is synthesized. A new utterance or a Stop cuts the previous one off and
// guarantees none of its remaining segments are ever dispatched.
type SpeechPipeline struct {
	synthesizer SegmentSynthesizer
	sink        SegmentSink
	ids         IDSource
	baseCtx     context.Context
	prefetch    int

	// onFinished reports utterances that produced no playable segments, so
	// the loop is not left waiting for a playback ack that cannot come.
	onFinished func(utteranceID string)

	mu      sync.Mutex
	current *activeUtterance
}

type activeUtterance struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSpeechPipeline wires the pipeline against a synthesizer and a sink.
func NewSpeechPipeline(ctx context.Context, synthesizer SegmentSynthesizer, sink SegmentSink, ids IDSource, onFinished func(utteranceID string)) *SpeechPipeline {
	if onFinished == nil {
		onFinished = func(string) {}
	}
	return &SpeechPipeline{
		synthesizer: synthesizer,
		sink:        sink,
		ids:         ids,
		baseCtx:     ctx,
		prefetch:    defaultPrefetchLimit,
		onFinished:  onFinished,
	}
}

// Speak starts streaming the text as the named utterance, cutting off any
// utterance still in flight.
func (p *SpeechPipeline) Speak(utteranceID, text string) {
	segments := splitSegments(text)

	p.mu.Lock()
	if p.current != nil {
		p.current.cancel()
	}
	if len(segments) == 0 {
		p.current = nil
		p.mu.Unlock()
		p.onFinished(utteranceID)
		return
	}

	ctx, cancel := context.WithCancel(p.baseCtx)
	utterance := &activeUtterance{id: utteranceID, cancel: cancel, done: make(chan struct{})}
	p.current = utterance
	p.mu.Unlock()

	go p.run(ctx, utterance, segments)
}

// Stop halts the current utterance immediately. In-flight segment fetches are
// cancelled; any that still complete are discarded on arrival because the
// dispatch goroutine is already gone.
func (p *SpeechPipeline) Stop() {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()

	if current != nil {
		current.cancel()
	}
}

// synthesizeSegment shields the prefetch worker from a panicking
// synthesizer: the segment degrades to text-only instead of wedging the
// sequencer on an index that never arrives.
func (p *SpeechPipeline) synthesizeSegment(ctx context.Context, text string) (audio []byte, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("synthesizer panicked: %v", recovered)
		}
	}()
	return p.synthesizer.Synthesize(ctx, text)
}

func (p *SpeechPipeline) run(ctx context.Context, utterance *activeUtterance, segments []string) {
	defer close(utterance.done)
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("utterance dispatch panicked",
				"utterance_id", utterance.id,
				"panic", fmt.Sprint(recovered),
			)
		}
	}()

	ctx, span := tracer.Start(ctx, "utterance playback")
	span.SetAttributes(
		attribute.String("utterance.id", utterance.id),
		attribute.Int("utterance.segments", len(segments)),
	)
	defer span.End()

	ordered := newSequencer(len(segments))
	limiter := make(chan struct{}, p.prefetch)

	for index, text := range segments {
		go func(index int, text string) {
			select {
			case limiter <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-limiter }()

			audio, err := p.synthesizeSegment(ctx, text)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("segment synthesis failed, dispatching text-only",
						"utterance_id", utterance.id,
						"segment_index", index,
						"error", err,
					)
				}
				audio = nil
			}
			if ctx.Err() != nil {
				// Stopped utterance: a late synthesis result is discarded
				// exactly like a stale provider completion.
				return
			}

			ordered.Offer(PlaybackSegment{
				UtteranceID: utterance.id,
				Index:       index,
				Text:        text,
				Audio:       audio,
				IsLast:      index == len(segments)-1,
				CommandID:   p.ids.NewID(),
			})
		}(index, text)
	}

	for dispatched := 0; dispatched < len(segments); dispatched++ {
		select {
		case <-ctx.Done():
			return
		case segment := <-ordered.Ordered():
			if ctx.Err() != nil {
				return
			}
			p.sink.PlaySegment(segment)
		}
	}
}
