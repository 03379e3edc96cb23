package audio

import (
	"context"
	"sync"
)

// MemoryCapture is a capture source backed by bytes fed in through
// Feed. It stands in for a microphone when the process runs without
// audio hardware.
type MemoryCapture struct {
	mu        sync.Mutex
	recording bool
	take      []byte
}

func NewMemoryCapture() *MemoryCapture {
	return &MemoryCapture{}
}

func (m *MemoryCapture) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recording = true
	m.take = nil
	return nil
}

// Feed appends audio to the current take. Bytes fed while no take is
// open are dropped.
func (m *MemoryCapture) Feed(chunk []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recording {
		m.take = append(m.take, chunk...)
	}
}

func (m *MemoryCapture) Stop() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recording = false
	take := m.take
	m.take = nil
	return take, nil
}
