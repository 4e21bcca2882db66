package sensors

import (
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/roverlabs/go-rover/internal/gpio"
)

// Pins describes the sensor wiring, BCM numbering. IR inputs are
// pulled up and read active-low; the ultrasonic pair is a standard
// HC-SR04 trigger/echo.
type Pins struct {
	IRLeft    uint8
	IRCenter  uint8
	IRRight   uint8
	UltraTrig uint8
	UltraEcho uint8
}

// DefaultPins is the stock sensor wiring.
var DefaultPins = Pins{
	IRLeft:    5,
	IRCenter:  6,
	IRRight:   13,
	UltraTrig: 27,
	UltraEcho: 17,
}

const (
	// echoTimeout bounds one ultrasonic measurement. 30ms of echo is
	// roughly 5m of range, past the sensor's limit anyway.
	echoTimeout = 30 * time.Millisecond

	// soundSpeedCmPerSec at room temperature.
	soundSpeedCmPerSec = 34300.0
)

// GPIOReader reads the proximity hardware through memory-mapped GPIO.
type GPIOReader struct {
	irLeft   rpio.Pin
	irCenter rpio.Pin
	irRight  rpio.Pin
	trig     rpio.Pin
	echo     rpio.Pin

	mu sync.Mutex
}

// OpenGPIOReader maps the sensor pins. Fails when /dev/gpiomem is
// unavailable, i.e. off-device.
func OpenGPIOReader(pins Pins) (*GPIOReader, error) {
	if err := gpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	r := &GPIOReader{
		irLeft:   rpio.Pin(pins.IRLeft),
		irCenter: rpio.Pin(pins.IRCenter),
		irRight:  rpio.Pin(pins.IRRight),
		trig:     rpio.Pin(pins.UltraTrig),
		echo:     rpio.Pin(pins.UltraEcho),
	}
	for _, p := range []rpio.Pin{r.irLeft, r.irCenter, r.irRight} {
		p.Input()
		p.PullUp()
	}
	r.trig.Output()
	r.trig.Low()
	r.echo.Input()
	return r, nil
}

// ReadIR reads the three proximity inputs. Active low: a low pin means
// an object is in range.
func (r *GPIOReader) ReadIR() (left, center, right bool, err error) {
	return r.irLeft.Read() == rpio.Low,
		r.irCenter.Read() == rpio.Low,
		r.irRight.Read() == rpio.Low,
		nil
}

// ReadDistanceCm fires the ultrasonic trigger and times the echo pulse.
func (r *GPIOReader) ReadDistanceCm() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 10µs trigger pulse.
	r.trig.High()
	time.Sleep(10 * time.Microsecond)
	r.trig.Low()

	// Wait for the echo to go high, then time how long it stays high.
	deadline := time.Now().Add(echoTimeout)
	for r.echo.Read() == rpio.Low {
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("ultrasonic echo never started")
		}
	}
	start := time.Now()
	deadline = start.Add(echoTimeout)
	for r.echo.Read() == rpio.High {
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("ultrasonic echo timed out")
		}
	}

	elapsed := time.Since(start)
	return elapsed.Seconds() * soundSpeedCmPerSec / 2, nil
}
