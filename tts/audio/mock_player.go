package audio

import (
	"sync"

	"github.com/dgnsrekt/ttsdeck/tts"
)

// MockPlayer is a scriptable tts.AudioStarter for tests. It records every
// stream it hands out so tests can assert the single-live-resource
// invariant and drive natural completion.
type MockPlayer struct {
	mu      sync.Mutex
	streams []*MockStream

	// StartErr, when set, makes Start fail without creating a stream.
	StartErr error
}

// NewMockPlayer creates a mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Start creates a mock stream. Fails with StartErr when set.
func (m *MockPlayer) Start(data []byte, onDone func()) (tts.AudioStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StartErr != nil {
		return nil, m.StartErr
	}

	s := &MockStream{data: data, onDone: onDone}
	m.streams = append(m.streams, s)
	return s, nil
}

// Streams returns every stream created so far.
func (m *MockPlayer) Streams() []*MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockStream, len(m.streams))
	copy(out, m.streams)
	return out
}

// LiveCount returns the number of streams not yet closed.
func (m *MockPlayer) LiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := 0
	for _, s := range m.streams {
		if !s.Closed() {
			live++
		}
	}
	return live
}

// MockStream is a playback stream that tests drive by hand.
type MockStream struct {
	mu      sync.Mutex
	data    []byte
	onDone  func()
	stopped bool
	closed  bool
	closes  int
}

// Stop pauses the stream.
func (s *MockStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Close releases the stream. Idempotent; extra calls are counted but
// harmless.
func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closes++
	return nil
}

// FinishPlayback simulates the stream reaching end of media, firing the
// done callback unless the stream was stopped or closed first.
func (s *MockStream) FinishPlayback() {
	s.mu.Lock()
	done := s.onDone
	fire := !s.stopped && !s.closed && done != nil
	s.mu.Unlock()

	if fire {
		done()
	}
}

// Stopped reports whether Stop was called.
func (s *MockStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Closed reports whether Close was called.
func (s *MockStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// CloseCount returns how many times Close was called.
func (s *MockStream) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Data returns the payload the stream was started with.
func (s *MockStream) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}
