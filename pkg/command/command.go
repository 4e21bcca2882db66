// Package command validates and routes inbound control commands to the
// motor actuator, the camera and audio collaborators, and the state store.
package command

import (
	"strconv"
	"sync"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/motor"
	"github.com/roverlabs/go-rover/pkg/state"
)

// DefaultPatrolRawSpeed is the patrol speed on the 0-255 wire scale when a
// patrol start command carries none.
const DefaultPatrolRawSpeed = 100

// MotorController is the slice of the motor actuator the dispatcher uses.
type MotorController interface {
	SetMotion(dir state.Direction, speed float64) error
	TriggerEmergencyStop()
}

// Collaborator is an external device (camera, audio) that accepts an
// action plus value and reports success or failure.
type Collaborator interface {
	Control(action string, value interface{}) error
}

// Dispatcher routes {command, action, value} triples. It holds no state
// beyond the routing targets and the timestamp of the last manual motor
// command, which feeds the patrol debounce.
type Dispatcher struct {
	store  *state.Store
	motors MotorController
	camera Collaborator // nil when the camera failed to initialize
	audio  Collaborator // nil when audio failed to initialize

	mu              sync.Mutex
	lastManualMotor time.Time

	now func() time.Time
}

// New creates a dispatcher. camera and audio may be nil; their commands
// then fail with ErrHardwareUnavailable while everything else keeps
// working.
func New(store *state.Store, motors MotorController, camera, audio Collaborator) *Dispatcher {
	return &Dispatcher{
		store:  store,
		motors: motors,
		camera: camera,
		audio:  audio,
		now:    time.Now,
	}
}

// LastManualMotor reports when the most recent manual motor command was
// processed. Zero time means never.
func (d *Dispatcher) LastManualMotor() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastManualMotor
}

// Dispatch validates and routes one command. Validation failures return
// synchronously; side effects are exactly those of the routed component.
func (d *Dispatcher) Dispatch(cmd, action string, value interface{}) error {
	log.Debug("dispatching command", "command", cmd, "action", action)

	switch cmd {
	case "motor":
		return d.handleMotor(action, value)
	case "camera":
		if d.camera == nil {
			return ErrHardwareUnavailable
		}
		return d.camera.Control(action, value)
	case "audio":
		if d.audio == nil {
			return ErrHardwareUnavailable
		}
		return d.audio.Control(action, value)
	case "mode":
		return d.handleMode(action)
	case "ai":
		return d.handleAI(action)
	case "patrol":
		return d.handlePatrol(action, value)
	case "emergency_stop":
		// Action and value are deliberately ignored.
		d.motors.TriggerEmergencyStop()
		return nil
	default:
		return ErrUnknownCommand
	}
}

func (d *Dispatcher) handleMotor(action string, value interface{}) error {
	speed, hasSpeed := toFloat(value)
	if !hasSpeed {
		speed = motor.DefaultSpeed
	}
	speed = motor.Clamp(speed)

	var dir state.Direction
	switch action {
	case "forward":
		dir = state.Forward
	case "backward":
		dir = state.Backward
	case "left":
		dir = state.Left
	case "right":
		dir = state.Right
	case "stop":
		dir = state.Stop
	case "speed":
		// Re-issue the current direction at the new speed. A stopped
		// drivetrain has no direction to re-issue; that is a no-op.
		current := d.store.Motion().Direction
		if current == state.Stop {
			return nil
		}
		dir = current
	default:
		return ErrUnknownAction
	}

	d.markManualMotor()
	return d.motors.SetMotion(dir, speed)
}

func (d *Dispatcher) handleMode(action string) error {
	switch action {
	case string(state.ModeManual):
		d.store.SetMode(state.ModeManual)
	case string(state.ModeAutonomous):
		d.store.SetMode(state.ModeAutonomous)
	default:
		return ErrUnknownAction
	}
	log.Info("mode set", "mode", action)
	return nil
}

func (d *Dispatcher) handleAI(action string) error {
	switch action {
	case "start":
		d.store.SetAIEnabled(true)
	case "stop":
		d.store.SetAIEnabled(false)
	default:
		return ErrUnknownAction
	}
	log.Info("ai detection toggled", "enabled", d.store.AIEnabled())
	return nil
}

func (d *Dispatcher) handlePatrol(action string, value interface{}) error {
	switch action {
	case "start":
		d.store.SetPatrolSpeed(patrolSpeedFrom(value))
		d.store.SetPatrolEnabled(true)
		log.Info("patrol enabled", "speed", d.store.PatrolSpeed())
	case "stop":
		d.store.SetPatrolEnabled(false)
		log.Info("patrol disabled")
	default:
		return ErrUnknownAction
	}
	return nil
}

// patrolSpeedFrom normalizes a patrol speed from the 0-255 wire scale to
// [0,1]. Malformed or missing values fall back to the default and
// out-of-range values are clamped, never rejected.
func patrolSpeedFrom(value interface{}) float64 {
	raw := float64(DefaultPatrolRawSpeed)
	if m, ok := value.(map[string]interface{}); ok {
		if v, ok := toFloat(m["speed"]); ok {
			raw = v
		}
	}
	if raw < 0 {
		raw = 0
	}
	if raw > 255 {
		raw = 255
	}
	return raw / 255.0
}

func (d *Dispatcher) markManualMotor() {
	d.mu.Lock()
	d.lastManualMotor = d.now()
	d.mu.Unlock()
}

// toFloat coerces the JSON value shapes clients actually send.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
