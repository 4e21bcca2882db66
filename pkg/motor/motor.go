// Package motor translates direction/speed intents into drivetrain
// actuation and owns the emergency-stop lockout.
package motor

import (
	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/state"
)

// DefaultSpeed is used when a motor command carries no speed value.
const DefaultSpeed = 0.5

// Wheel drives one side of the drivetrain. Implementations wrap the GPIO
// motor driver; tests use a recording mock.
type Wheel interface {
	Forward(speed float64) error
	Backward(speed float64) error
	Stop() error
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Clamp restricts a speed to [0,1]. Out-of-range inputs are clamped, not
// rejected; the rover prefers driving at a bounded speed over refusing a
// sloppy client.
func Clamp(speed float64) float64 {
	return clamp(speed, 0, 1)
}

// Actuator applies motion intents to the wheels and records the applied
// motion in the state store as one atomic write.
type Actuator struct {
	left  Wheel
	right Wheel
	store *state.Store
}

// New creates an Actuator over the given wheels. Either wheel may be nil
// when the driver failed to initialize; the actuator then updates state
// only and skips physical actuation.
func New(left, right Wheel, store *state.Store) *Actuator {
	return &Actuator{left: left, right: right, store: store}
}

// SetMotion drives the wheels in the given direction at the given speed.
// Speed is clamped to [0,1]. While the emergency stop is engaged every
// call forces a full stop and returns ErrEmergencyLockout.
func (a *Actuator) SetMotion(dir state.Direction, speed float64) error {
	speed = Clamp(speed)

	m, ok := motionFor(dir, speed)
	if !ok {
		// Unknown directions behave like a stop request.
		m = state.Motion{Direction: state.Stop}
	}

	// The store re-checks the emergency flag under lock, closing the race
	// where a stop is raised between our check and the write.
	if !a.store.ApplyMotion(m) {
		a.haltWheels()
		a.store.ForceStop()
		return ErrEmergencyLockout
	}

	a.driveWheels(m)
	return nil
}

// TriggerEmergencyStop latches the emergency stop and forces the
// drivetrain to a full stop. It always succeeds, is idempotent, and is
// never cleared for the life of the process.
func (a *Actuator) TriggerEmergencyStop() {
	a.store.RaiseEmergencyStop()
	a.haltWheels()
	a.store.ForceStop()
	log.Warn("emergency stop engaged")
}

// motionFor maps a direction to per-wheel speeds. Left and right spins
// counter-rotate the wheels.
func motionFor(dir state.Direction, speed float64) (state.Motion, bool) {
	switch dir {
	case state.Forward, state.Backward, state.Left, state.Right:
		return state.Motion{Direction: dir, LeftSpeed: speed, RightSpeed: speed}, true
	case state.Stop:
		return state.Motion{Direction: state.Stop}, true
	default:
		return state.Motion{}, false
	}
}

func (a *Actuator) driveWheels(m state.Motion) {
	if a.left == nil || a.right == nil {
		return
	}

	var err error
	switch m.Direction {
	case state.Forward:
		err = firstErr(a.left.Forward(m.LeftSpeed), a.right.Forward(m.RightSpeed))
	case state.Backward:
		err = firstErr(a.left.Backward(m.LeftSpeed), a.right.Backward(m.RightSpeed))
	case state.Left:
		err = firstErr(a.left.Backward(m.LeftSpeed), a.right.Forward(m.RightSpeed))
	case state.Right:
		err = firstErr(a.left.Forward(m.LeftSpeed), a.right.Backward(m.RightSpeed))
	case state.Stop:
		err = firstErr(a.left.Stop(), a.right.Stop())
	}
	if err != nil {
		log.Error("wheel actuation failed", "direction", m.Direction, "error", err)
	}
}

func (a *Actuator) haltWheels() {
	if a.left != nil {
		if err := a.left.Stop(); err != nil {
			log.Error("left wheel stop failed", "error", err)
		}
	}
	if a.right != nil {
		if err := a.right.Stop(); err != nil {
			log.Error("right wheel stop failed", "error", err)
		}
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
