package orchestration

import (
	"fmt"
	"sync"
	"time"

	"github.com/hanagata/kioskd/core/events"
)

const eventQueueCapacity = 64

// EffectRunner executes the effects produced by one reduction. Run must not
// block: outcomes come back to the loop as events via Submit.
type EffectRunner interface {
	Run(effects []Effect, state State)
}

// Loop owns the orchestrator state and serializes every event through the
// reducer, one at a time. Provider completions, operator input and clock
// ticks all enter through the same queue, so the state never needs a lock of
// its own.
type Loop struct {
	reducer      Reducer
	clock        Clock
	ids          IDSource
	runner       EffectRunner
	tickInterval time.Duration

	queue     chan events.Event
	closeCh   chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	mu    sync.RWMutex
	state State
}

// NewLoop creates a stopped loop around the reducer. tickInterval governs how
// often clock ticks are fed in; the clock itself is injectable for tests.
func NewLoop(reducer Reducer, clock Clock, ids IDSource, runner EffectRunner, tickInterval time.Duration) *Loop {
	return &Loop{
		reducer:      reducer,
		clock:        clock,
		ids:          ids,
		runner:       runner,
		tickInterval: tickInterval,
		queue:        make(chan events.Event, eventQueueCapacity),
		closeCh:      make(chan struct{}),
		done:         make(chan struct{}),
		state:        NewState(clock.Now()),
	}
}

// Start launches the single processing goroutine. Call at most once.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		ticks, stopTicks := l.clock.Tick(l.tickInterval)
		go func() {
			defer close(l.done)
			defer stopTicks()
			for {
				select {
				case <-l.closeCh:
					return
				case now := <-ticks:
					l.process(events.NewTick(now))
				case event := <-l.queue:
					l.process(event)
				}
			}
		}()
	})
}

// Submit queues an event for processing. It blocks only while the queue is
// full and returns false once the loop is closed.
func (l *Loop) Submit(event events.Event) bool {
	select {
	case <-l.closeCh:
		return false
	default:
	}

	select {
	case l.queue <- event:
		return true
	case <-l.closeCh:
		return false
	}
}

// Close stops the loop and waits for the processing goroutine to drain.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.closeCh) })
	<-l.done
}

// SnapshotState returns a copy of the current state. The session buffer is
// copied so callers can never reach back into loop-owned memory.
func (l *Loop) SnapshotState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := l.state
	snapshot.Session = append([]Exchange(nil), l.state.Session...)
	return snapshot
}

func (l *Loop) process(event events.Event) {
	// A panic while reducing or running effects drops the one event and
	// keeps the loop alive; the state already committed stays committed.
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("event processing panicked, event dropped",
				"event", string(event.Kind()),
				"panic", fmt.Sprint(recovered),
			)
		}
	}()

	l.mu.RLock()
	state := l.state
	l.mu.RUnlock()

	next, effects := l.reducer.Reduce(state, event, l.clock.Now(), l.ids)

	l.mu.Lock()
	l.state = next
	l.mu.Unlock()

	if state.Phase != next.Phase {
		logger.Debug("phase transition",
			"event", string(event.Kind()),
			"from", string(state.Phase),
			"to", string(next.Phase),
		)
	}

	if len(effects) > 0 && l.runner != nil {
		l.runner.Run(effects, next)
	}
}
