package audio

import (
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
)

// APlaySink plays PCM through the ALSA aplay utility, which is present
// on every Raspberry Pi OS image. Playback is serialized; a new tone
// waits for the previous one to finish.
type APlaySink struct {
	mu sync.Mutex
}

// NewAPlaySink probes for aplay and returns a sink, or an error when
// the utility is missing.
func NewAPlaySink() (*APlaySink, error) {
	if _, err := exec.LookPath("aplay"); err != nil {
		return nil, fmt.Errorf("aplay not found: %w", err)
	}
	return &APlaySink{}, nil
}

// Play writes 16-bit mono PCM to aplay's stdin.
func (s *APlaySink) Play(samples []int16, sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := exec.Command("aplay", "-q", "-f", "S16_LE", "-c", "1", "-r", strconv.Itoa(sampleRate))
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("aplay stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start aplay: %w", err)
	}

	buf := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	if _, err := stdin.Write(buf); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write pcm: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("aplay: %w", err)
	}
	return nil
}

// Close satisfies the Sink interface; aplay holds no persistent device
// handle.
func (s *APlaySink) Close() error {
	return nil
}
