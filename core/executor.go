package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hanagata/kioskd/core/events"
)

// ProviderKind names the provider slots the executor tracks in-flight calls
// for. At most one call per kind is outstanding at a time.
type ProviderKind string

const (
	ProviderTranscription ProviderKind = "transcription"
	ProviderChat          ProviderKind = "chat"
	ProviderSummary       ProviderKind = "summary"
)

// callPolicy is the per-provider-kind policy table entry. No automatic
// retries: a failed or timed-out call becomes a failure event and the reducer
// decides what happens next.
type callPolicy struct {
	timeout time.Duration
	retries int
}

// ExecutorTimeouts carries the per-provider deadlines.
type ExecutorTimeouts struct {
	Transcription time.Duration
	Chat          time.Duration
	Summary       time.Duration
}

// DefaultExecutorTimeouts mirrors the deployed kiosk defaults.
func DefaultExecutorTimeouts() ExecutorTimeouts {
	return ExecutorTimeouts{
		Transcription: 15 * time.Second,
		Chat:          12 * time.Second,
		Summary:       4 * time.Second,
	}
}

type inflightCall struct {
	id     string
	cancel context.CancelFunc
}

// Executor carries out the effects a reduction produced. Provider calls run
// on their own goroutines bounded by the policy table; every outcome is
// normalized into an event and fed back through submit. Nothing here blocks
// the loop.
type Executor struct {
	stt        SpeechToText
	chat       ChatModel
	summarizer Summarizer
	store      SummaryWriter
	capture    AudioCapture
	speaker    Speaker
	broadcast  Broadcaster

	policies map[ProviderKind]callPolicy
	baseCtx  context.Context

	mu        sync.Mutex
	submit    func(events.Event) bool
	inflight  map[ProviderKind]inflightCall
	take      []byte
	capturing bool
}

// NewExecutor wires the executor against its collaborators. Bind must be
// called with the loop's Submit before any effect runs.
func NewExecutor(
	ctx context.Context,
	stt SpeechToText,
	chat ChatModel,
	summarizer Summarizer,
	store SummaryWriter,
	capture AudioCapture,
	speaker Speaker,
	broadcast Broadcaster,
	timeouts ExecutorTimeouts,
) *Executor {
	return &Executor{
		stt:        stt,
		chat:       chat,
		summarizer: summarizer,
		store:      store,
		capture:    capture,
		speaker:    speaker,
		broadcast:  broadcast,
		baseCtx:    ctx,
		policies: map[ProviderKind]callPolicy{
			ProviderTranscription: {timeout: timeouts.Transcription},
			ProviderChat:          {timeout: timeouts.Chat},
			ProviderSummary:       {timeout: timeouts.Summary},
		},
		inflight: make(map[ProviderKind]inflightCall),
	}
}

// Bind attaches the event sink the executor reports back through.
func (x *Executor) Bind(submit func(events.Event) bool) {
	x.mu.Lock()
	x.submit = submit
	x.mu.Unlock()
}

// Run executes one reduction's effects. state is the post-reduction state;
// it is only consulted to reconcile in-flight calls against the live
// correlation ids, never mutated.
func (x *Executor) Run(effects []Effect, state State) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case StartRecording:
			x.startRecording()
		case StopRecording:
			x.stopRecording()
		case BeginTranscription:
			x.beginTranscription(e.RequestID)
		case CallChat:
			x.callChat(e.RequestID, e.Prompt, e.History)
		case SummarizeSession:
			x.summarizeSession(e.RequestID, e.Exchanges)
		case Speak:
			x.speaker.Speak(e.UtteranceID, e.Text)
		case StopOutput:
			x.speaker.Stop()
		case SetExpression:
			x.broadcast.SetExpression(e.Name)
		case PlayMotion:
			x.broadcast.PlayMotion(e.Name, e.InstanceID)
		case BroadcastSnapshot:
			x.broadcast.Snapshot(state)
		default:
			// A new effect variant without a handler is a programming error.
			logger.Error("unhandled effect", "effect", fmt.Sprintf("%T", effect))
		}
	}

	x.reconcile(state)
}

// reconcile cancels outstanding calls whose correlation id is no longer live.
// Cancellation is best-effort; the reducer's staleness check is what actually
// keeps superseded results out.
func (x *Executor) reconcile(state State) {
	live := map[ProviderKind]string{
		ProviderTranscription: state.LiveTranscriptionID,
		ProviderChat:          state.LiveChatID,
		ProviderSummary:       state.LiveSummaryID,
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for kind, call := range x.inflight {
		if call.id != live[kind] {
			call.cancel()
			delete(x.inflight, kind)
		}
	}
}

func (x *Executor) startRecording() {
	x.mu.Lock()
	if x.capturing {
		x.mu.Unlock()
		return
	}
	x.capturing = true
	x.take = nil
	x.mu.Unlock()

	if x.capture == nil {
		return
	}
	if err := x.capture.Start(x.baseCtx); err != nil {
		logger.Error("failed to start audio capture", "error", err)
	}
}

func (x *Executor) stopRecording() {
	x.mu.Lock()
	if !x.capturing {
		x.mu.Unlock()
		return
	}
	x.capturing = false
	x.mu.Unlock()

	if x.capture == nil {
		return
	}
	take, err := x.capture.Stop()
	if err != nil {
		logger.Error("failed to stop audio capture", "error", err)
		return
	}

	x.mu.Lock()
	x.take = take
	x.mu.Unlock()
}

func (x *Executor) beginTranscription(requestID string) {
	x.mu.Lock()
	take := x.take
	x.take = nil
	x.mu.Unlock()

	x.dispatch(ProviderTranscription, requestID, func(ctx context.Context) events.Event {
		transcript, err := x.stt.Transcribe(ctx, take)
		if err != nil {
			return events.NewTranscriptionFailed(requestID, err)
		}
		return events.NewTranscriptionSucceeded(requestID, transcript)
	})
}

func (x *Executor) callChat(requestID, prompt string, history []Exchange) {
	x.dispatch(ProviderChat, requestID, func(ctx context.Context) events.Event {
		reply, err := x.chat.Reply(ctx, prompt, history)
		if err != nil {
			return events.NewChatFailed(requestID, err)
		}
		return events.NewChatSucceeded(requestID, reply)
	})
}

func (x *Executor) summarizeSession(requestID string, exchanges []Exchange) {
	x.dispatch(ProviderSummary, requestID, func(ctx context.Context) events.Event {
		summary, err := x.summarizer.Summarize(ctx, exchanges)
		if err != nil {
			return events.NewSummaryFailed(requestID, err)
		}
		if err := x.store.WritePendingSummary(ctx, summary); err != nil {
			return events.NewSummaryFailed(requestID, err)
		}
		return events.NewSummarySucceeded(requestID)
	})
}

// dispatch starts one bounded provider call. A previous call of the same kind
// is superseded: cancelled here and discarded by correlation id on arrival.
func (x *Executor) dispatch(kind ProviderKind, requestID string, call func(context.Context) events.Event) {
	policy := x.policies[kind]
	ctx, cancel := context.WithTimeout(x.baseCtx, policy.timeout)

	x.mu.Lock()
	if prev, ok := x.inflight[kind]; ok {
		prev.cancel()
	}
	x.inflight[kind] = inflightCall{id: requestID, cancel: cancel}
	x.mu.Unlock()

	go func() {
		defer cancel()

		ctx, span := tracer.Start(ctx, "provider call")
		span.SetAttributes(
			attribute.String("provider.kind", string(kind)),
			attribute.String("request.id", requestID),
		)
		defer span.End()

		event := panicSafeProviderCall(kind, requestID, call)(ctx)
		switch failed := event.(type) {
		case events.TranscriptionFailed:
			span.SetStatus(codes.Error, failed.Err.Error())
		case events.ChatFailed:
			span.SetStatus(codes.Error, failed.Err.Error())
		case events.SummaryFailed:
			span.SetStatus(codes.Error, failed.Err.Error())
		}

		x.mu.Lock()
		if current, ok := x.inflight[kind]; ok && current.id == requestID {
			delete(x.inflight, kind)
		}
		submit := x.submit
		x.mu.Unlock()

		if submit != nil {
			submit(event)
		}
	}()
}
