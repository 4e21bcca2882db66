package motor

import "sync"

// MockWheel records every drive call for tests.
type MockWheel struct {
	mu    sync.Mutex
	calls []WheelCall
}

// WheelCall is one recorded drive command.
type WheelCall struct {
	Op    string // "forward", "backward", "stop"
	Speed float64
}

// NewMockWheel creates a recording wheel.
func NewMockWheel() *MockWheel {
	return &MockWheel{}
}

func (w *MockWheel) Forward(speed float64) error {
	w.record(WheelCall{Op: "forward", Speed: speed})
	return nil
}

func (w *MockWheel) Backward(speed float64) error {
	w.record(WheelCall{Op: "backward", Speed: speed})
	return nil
}

func (w *MockWheel) Stop() error {
	w.record(WheelCall{Op: "stop"})
	return nil
}

func (w *MockWheel) record(c WheelCall) {
	w.mu.Lock()
	w.calls = append(w.calls, c)
	w.mu.Unlock()
}

// Last returns the most recent call, or a zero call if none were made.
func (w *MockWheel) Last() WheelCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.calls) == 0 {
		return WheelCall{}
	}
	return w.calls[len(w.calls)-1]
}

// Calls returns a copy of all recorded calls.
func (w *MockWheel) Calls() []WheelCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WheelCall, len(w.calls))
	copy(out, w.calls)
	return out
}
