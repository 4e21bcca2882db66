package audio

import (
	"errors"
	"sync"

	"github.com/roverlabs/go-rover/internal/log"
)

// ErrUnknownAction is returned for an unrecognized audio action.
var ErrUnknownAction = errors.New("audio: unknown action")

// ErrUnknownTone is returned when asked to play a tone that doesn't exist.
var ErrUnknownTone = errors.New("audio: unknown tone")

// ErrUnavailable is returned for playback when no output device exists.
var ErrUnavailable = errors.New("audio: output device unavailable")

// Sink plays PCM audio on the output device.
type Sink interface {
	// Play writes 16-bit mono PCM at the given sample rate. Blocks until
	// the samples are handed to the device.
	Play(samples []int16, sampleRate int) error
	Close() error
}

// Player owns the speaker: tone playback and volume.
type Player struct {
	sink Sink

	mu     sync.Mutex
	volume int
}

// NewPlayer creates a player over the given sink. sink may be nil when
// audio hardware is absent; playback then returns ErrUnavailable while
// volume control keeps working as software state.
func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink, volume: 100}
}

// Play synthesizes and plays the named tone.
func (p *Player) Play(tone Tone) error {
	samples := Synthesize(tone)
	if samples == nil {
		return ErrUnknownTone
	}
	if p.sink == nil {
		log.Warn("audio hardware absent, refusing tone", "tone", tone)
		return ErrUnavailable
	}
	log.Info("playing tone", "tone", tone)
	return p.sink.Play(samples, SampleRate)
}

// Volume returns the current volume, 0-100.
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Control implements the command collaborator interface.
// Actions: "play" with a numeric sound id (1=alert, 2=low_pitch, 3=siren)
// or a tone name; "volume" with a 0-100 value.
func (p *Player) Control(action string, value interface{}) error {
	switch action {
	case "play":
		return p.Play(toneFromValue(value))
	case "volume":
		vol := 100
		if f, ok := value.(float64); ok {
			vol = int(f)
		}
		if vol < 0 {
			vol = 0
		}
		if vol > 100 {
			vol = 100
		}
		p.mu.Lock()
		p.volume = vol
		p.mu.Unlock()
		log.Info("volume set", "volume", vol)
		return nil
	default:
		return ErrUnknownAction
	}
}

// Close releases the output device.
func (p *Player) Close() error {
	if p.sink == nil {
		return nil
	}
	return p.sink.Close()
}

// toneFromValue maps the wire encoding (numeric sound ids from the old
// firmware, or tone names) to a Tone.
func toneFromValue(value interface{}) Tone {
	switch v := value.(type) {
	case float64:
		switch int(v) {
		case 1:
			return ToneAlert
		case 2:
			return ToneLowPitch
		case 3:
			return ToneSiren
		}
	case string:
		return Tone(v)
	}
	return ToneAlert
}
