package ai

import (
	"errors"
	"testing"

	"github.com/roverlabs/go-rover/pkg/state"
)

type mockDetector struct {
	result Detection
	err    error
	calls  int
}

func (m *mockDetector) Detect(frame []byte) (Detection, error) {
	m.calls++
	if m.err != nil {
		return Detection{}, m.err
	}
	return m.result, nil
}

type mockFrames struct {
	frame []byte
	err   error
}

func (m *mockFrames) Frame() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.frame, nil
}

func TestTick_DisabledDoesNothing(t *testing.T) {
	det := &mockDetector{}
	l := NewLoop(state.New(), det, &mockFrames{frame: []byte("f")})

	l.tick()

	if det.calls != 0 {
		t.Error("detector invoked while AI disabled")
	}
}

func TestTick_RecordsPositiveDetections(t *testing.T) {
	store := state.New()
	store.SetAIEnabled(true)
	det := &mockDetector{result: Detection{Detected: true, Objects: []string{"person"}, Confidence: 0.85}}
	l := NewLoop(store, det, &mockFrames{frame: []byte("f")})

	l.tick()

	last, ok := l.Last()
	if !ok || !last.Detected {
		t.Fatalf("last detection: got %+v, %v", last, ok)
	}
	if last.Timestamp == "" {
		t.Error("timestamp not stamped")
	}
	if len(l.History()) != 1 {
		t.Errorf("history: got %d entries, want 1", len(l.History()))
	}
}

func TestTick_HistoryBounded(t *testing.T) {
	store := state.New()
	store.SetAIEnabled(true)
	det := &mockDetector{result: Detection{Detected: true}}
	l := NewLoop(store, det, &mockFrames{frame: []byte("f")})

	for i := 0; i < HistorySize+25; i++ {
		l.tick()
	}

	if got := len(l.History()); got != HistorySize {
		t.Errorf("history: got %d entries, want %d", got, HistorySize)
	}
}

func TestTick_NegativeResultNotLogged(t *testing.T) {
	store := state.New()
	store.SetAIEnabled(true)
	det := &mockDetector{result: Detection{Detected: false}}
	l := NewLoop(store, det, &mockFrames{frame: []byte("f")})

	l.tick()

	if len(l.History()) != 0 {
		t.Error("negative detection entered history")
	}
	if _, ok := l.Last(); !ok {
		t.Error("last detection should still record negatives")
	}
}

func TestTick_SurvivesFailures(t *testing.T) {
	store := state.New()
	store.SetAIEnabled(true)

	// Camera failure: skip, don't crash.
	l := NewLoop(store, &mockDetector{}, &mockFrames{err: errors.New("no frame")})
	l.tick()

	// Model failure: skip, don't crash.
	l = NewLoop(store, &mockDetector{err: errors.New("inference failed")}, &mockFrames{frame: []byte("f")})
	l.tick()

	if _, ok := l.Last(); ok {
		t.Error("failed detection recorded a result")
	}
}
