package sensors

import (
	"math"
	"sync/atomic"
)

// SimReader is a stand-in for absent proximity hardware: a clear field
// with a slow back-and-forth range sweep, so bench builds still exercise
// the obstacle path. Used when the GPIO sensor stack fails to initialize.
type SimReader struct {
	ticks atomic.Uint64
}

// NewSimReader creates a simulated sensor reader.
func NewSimReader() *SimReader {
	return &SimReader{}
}

func (s *SimReader) ReadIR() (bool, bool, bool, error) {
	return false, false, false, nil
}

// ReadDistanceCm sweeps between 10cm and 190cm over ~60s of ticks.
func (s *SimReader) ReadDistanceCm() (float64, error) {
	t := float64(s.ticks.Add(1))
	return 100 + 90*math.Sin(2*math.Pi*t/600), nil
}
