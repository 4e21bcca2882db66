package audio

import "sync"

// MockSink records played audio for tests.
type MockSink struct {
	mu     sync.Mutex
	plays  []PlayedAudio
	closed bool
}

// PlayedAudio is one recorded playback.
type PlayedAudio struct {
	Samples    int
	SampleRate int
}

// NewMockSink creates a recording sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

func (m *MockSink) Play(samples []int16, sampleRate int) error {
	m.mu.Lock()
	m.plays = append(m.plays, PlayedAudio{Samples: len(samples), SampleRate: sampleRate})
	m.mu.Unlock()
	return nil
}

func (m *MockSink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Plays returns a copy of all recorded playbacks.
func (m *MockSink) Plays() []PlayedAudio {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlayedAudio, len(m.plays))
	copy(out, m.plays)
	return out
}
