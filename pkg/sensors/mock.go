package sensors

import "sync"

// MockReader is a scripted sensor reader for tests.
type MockReader struct {
	mu sync.Mutex

	IRLeft, IRCenter, IRRight bool
	DistanceCm                float64

	IRErr       error
	DistanceErr error

	reads int
}

// NewMockReader creates a mock with a clear 100cm range.
func NewMockReader() *MockReader {
	return &MockReader{DistanceCm: 100}
}

func (m *MockReader) ReadIR() (bool, bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.IRErr != nil {
		return false, false, false, m.IRErr
	}
	return m.IRLeft, m.IRCenter, m.IRRight, nil
}

func (m *MockReader) ReadDistanceCm() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DistanceErr != nil {
		return 0, m.DistanceErr
	}
	return m.DistanceCm, nil
}

// SetDistance updates the scripted range reading.
func (m *MockReader) SetDistance(cm float64) {
	m.mu.Lock()
	m.DistanceCm = cm
	m.mu.Unlock()
}

// SetErrors updates the scripted failures.
func (m *MockReader) SetErrors(irErr, distErr error) {
	m.mu.Lock()
	m.IRErr = irErr
	m.DistanceErr = distErr
	m.mu.Unlock()
}

// Reads returns how many IR reads were attempted.
func (m *MockReader) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
