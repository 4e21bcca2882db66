// Package ai runs the object-detection loop over camera frames. The
// model itself is an external collaborator behind the Detector interface.
package ai

import (
	"context"
	"sync"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/state"
)

const (
	// DetectInterval is the detection loop period.
	DetectInterval = time.Second

	// HistorySize bounds the in-memory detection log. Older detections
	// are discarded; nothing is persisted.
	HistorySize = 100
)

// Detection is one model inference result.
type Detection struct {
	Detected   bool     `json:"detected"`
	Objects    []string `json:"objects"`
	Confidence float64  `json:"confidence"`
	Timestamp  string   `json:"timestamp"`
}

// Detector runs model inference on one JPEG frame.
type Detector interface {
	Detect(frame []byte) (Detection, error)
}

// FrameSource supplies frames to analyze; implemented by the camera
// manager.
type FrameSource interface {
	Frame() ([]byte, error)
}

// Loop runs detection once a second while aiEnabled is set, keeping a
// bounded history of positive results.
type Loop struct {
	store    *state.Store
	detector Detector
	frames   FrameSource

	interval time.Duration

	mu      sync.RWMutex
	history []Detection
	last    *Detection
}

// NewLoop creates a detection loop. detector or frames may be nil when
// the model or camera is unavailable; the loop then idles.
func NewLoop(store *state.Store, detector Detector, frames FrameSource) *Loop {
	return &Loop{
		store:    store,
		detector: detector,
		frames:   frames,
		interval: DetectInterval,
	}
}

// Run polls until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	log.Info("ai detection loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("ai detection loop stopped")
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// tick runs one detection pass if AI is enabled and a model and camera
// are present. Failures are logged and skipped; the loop never stops.
func (l *Loop) tick() {
	if !l.store.AIEnabled() || l.detector == nil || l.frames == nil {
		return
	}

	frame, err := l.frames.Frame()
	if err != nil {
		log.Debug("detection frame unavailable", "error", err)
		return
	}

	det, err := l.detector.Detect(frame)
	if err != nil {
		log.Error("detection failed", "error", err)
		return
	}
	det.Timestamp = time.Now().UTC().Format(time.RFC3339)

	l.mu.Lock()
	l.last = &det
	if det.Detected {
		l.history = append(l.history, det)
		if len(l.history) > HistorySize {
			l.history = l.history[len(l.history)-HistorySize:]
		}
	}
	l.mu.Unlock()

	if det.Detected {
		log.Info("objects detected", "objects", det.Objects, "confidence", det.Confidence)
	}
}

// Last returns the most recent detection result, if any.
func (l *Loop) Last() (Detection, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.last == nil {
		return Detection{}, false
	}
	return *l.last, true
}

// History returns a copy of the bounded detection log.
func (l *Loop) History() []Detection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Detection, len(l.history))
	copy(out, l.history)
	return out
}
