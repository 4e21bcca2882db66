// Package audio synthesizes the rover's alert tones and plays them
// through a pluggable output sink.
package audio

import (
	"math"
	"time"
)

// SampleRate for all synthesized tones.
const SampleRate = 44100

// toneAmplitude keeps the tones well below clipping.
const toneAmplitude = 0.3

// Tone identifies a built-in sound.
type Tone string

const (
	// ToneAlert is a short 800Hz beep.
	ToneAlert Tone = "alert"

	// ToneLowPitch is a longer 200Hz tone.
	ToneLowPitch Tone = "low_pitch"

	// ToneSiren sweeps 400±300Hz for two seconds.
	ToneSiren Tone = "siren"
)

// Synthesize renders a tone as 16-bit mono PCM at SampleRate.
func Synthesize(tone Tone) []int16 {
	switch tone {
	case ToneAlert:
		return sine(800, 500*time.Millisecond)
	case ToneLowPitch:
		return sine(200, time.Second)
	case ToneSiren:
		return siren(400, 300, 2, 2*time.Second)
	default:
		return nil
	}
}

// sine renders a fixed-frequency tone.
func sine(freqHz float64, dur time.Duration) []int16 {
	n := int(float64(SampleRate) * dur.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / SampleRate
		samples[i] = pcm(math.Sin(2 * math.Pi * freqHz * t))
	}
	return samples
}

// siren renders a tone whose frequency oscillates around a center at the
// given sweep rate.
func siren(centerHz, spreadHz, sweepHz float64, dur time.Duration) []int16 {
	n := int(float64(SampleRate) * dur.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / SampleRate
		freq := centerHz + spreadHz*math.Sin(2*math.Pi*sweepHz*t)
		samples[i] = pcm(math.Sin(2 * math.Pi * freq * t))
	}
	return samples
}

func pcm(v float64) int16 {
	return int16(v * toneAmplitude * math.MaxInt16)
}
