package motor

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/roverlabs/go-rover/internal/gpio"
)

// WheelPins describes one side of an L298N-style driver: two direction
// pins and a PWM enable pin, BCM numbering.
type WheelPins struct {
	Forward  uint8
	Backward uint8
	Enable   uint8
}

// Default drivetrain wiring.
var (
	DefaultLeftPins  = WheelPins{Forward: 18, Backward: 23, Enable: 24}
	DefaultRightPins = WheelPins{Forward: 25, Backward: 12, Enable: 16}
)

// pwmCycle is the software PWM resolution for the enable pin.
const pwmCycle = 100

// GPIOWheel drives one wheel through memory-mapped GPIO.
type GPIOWheel struct {
	fwd rpio.Pin
	bwd rpio.Pin
	en  rpio.Pin
}

// OpenGPIOWheel maps the pins for one wheel. The first call opens
// /dev/gpiomem; an error there means we're not on a Pi.
func OpenGPIOWheel(pins WheelPins) (*GPIOWheel, error) {
	if err := gpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	w := &GPIOWheel{
		fwd: rpio.Pin(pins.Forward),
		bwd: rpio.Pin(pins.Backward),
		en:  rpio.Pin(pins.Enable),
	}
	w.fwd.Output()
	w.bwd.Output()
	w.en.Pwm()
	w.en.Freq(pwmCycle * 200)
	w.en.DutyCycle(0, pwmCycle)
	return w, nil
}

func (w *GPIOWheel) Forward(speed float64) error {
	w.fwd.High()
	w.bwd.Low()
	w.en.DutyCycle(duty(speed), pwmCycle)
	return nil
}

func (w *GPIOWheel) Backward(speed float64) error {
	w.fwd.Low()
	w.bwd.High()
	w.en.DutyCycle(duty(speed), pwmCycle)
	return nil
}

func (w *GPIOWheel) Stop() error {
	w.fwd.Low()
	w.bwd.Low()
	w.en.DutyCycle(0, pwmCycle)
	return nil
}

func duty(speed float64) uint32 {
	return uint32(Clamp(speed) * pwmCycle)
}
