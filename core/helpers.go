package orchestration

import (
	"context"
	"fmt"

	"github.com/hanagata/kioskd/core/events"
)

// panicSafeProviderCall wraps one provider call so a panic inside the
// adapter surfaces as that kind's ordinary failure event instead of
// taking the executor goroutine, and with it the session, down.
func panicSafeProviderCall(kind ProviderKind, requestID string, call func(context.Context) events.Event) func(context.Context) events.Event {
	return func(ctx context.Context) (event events.Event) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("provider call panicked",
					"kind", string(kind),
					"request_id", requestID,
					"panic", fmt.Sprint(recovered),
				)
				event = providerFailure(kind, requestID, fmt.Errorf("%s provider panicked: %v", kind, recovered))
			}
		}()
		return call(ctx)
	}
}

func providerFailure(kind ProviderKind, requestID string, err error) events.Event {
	switch kind {
	case ProviderChat:
		return events.NewChatFailed(requestID, err)
	case ProviderSummary:
		return events.NewSummaryFailed(requestID, err)
	default:
		return events.NewTranscriptionFailed(requestID, err)
	}
}
