package motor

import "errors"

var (
	// ErrEmergencyLockout is returned when a motion command arrives while
	// the emergency stop is engaged. The drivetrain is forced to a full
	// stop instead of applying the request.
	ErrEmergencyLockout = errors.New("motor: emergency stop engaged")

	// ErrHardwareUnavailable is returned when the motor driver failed to
	// initialize and the actuator is running as a no-op.
	ErrHardwareUnavailable = errors.New("motor: hardware unavailable")
)
