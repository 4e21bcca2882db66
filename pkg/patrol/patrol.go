// Package patrol implements the autonomous patrol behavior: drive forward
// until an obstacle appears, spin right for a fixed dwell, resume.
package patrol

import (
	"context"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/state"
)

const (
	// TickInterval is the patrol loop period (10Hz).
	TickInterval = 100 * time.Millisecond

	// AvoidDwell is how long the rover holds the right turn after an
	// obstacle appears. Fixed-duration and sensor-blind on purpose: the
	// rover resumes forward after the dwell whether or not the obstacle
	// has cleared.
	AvoidDwell = time.Second

	// ManualDebounce suppresses patrol motion writes for this long after
	// an explicit manual motor command, so autonomous and manual control
	// do not flap over the drivetrain.
	ManualDebounce = 500 * time.Millisecond
)

// Phase is the patrol state machine phase.
type Phase int

const (
	Idle Phase = iota
	Advancing
	Avoiding
)

func (p Phase) String() string {
	switch p {
	case Advancing:
		return "advancing"
	case Avoiding:
		return "avoiding"
	default:
		return "idle"
	}
}

// MotionController is the slice of the motor actuator the patrol loop
// needs.
type MotionController interface {
	SetMotion(dir state.Direction, speed float64) error
}

// Controller runs the patrol state machine. It reads obstacle state and
// the patrol toggles from the store and issues motion intents through the
// actuator, which re-checks the emergency stop on every write.
type Controller struct {
	store  *state.Store
	motors MotionController

	// lastManual reports when the dispatcher last processed an explicit
	// manual motor command. Zero time means never.
	lastManual func() time.Time

	interval time.Duration
	dwell    time.Duration
	debounce time.Duration

	phase      Phase
	avoidUntil time.Time

	now func() time.Time
}

// New creates a patrol controller. lastManual may be nil when no manual
// command path exists (e.g. in isolation tests).
func New(store *state.Store, motors MotionController, lastManual func() time.Time) *Controller {
	return &Controller{
		store:      store,
		motors:     motors,
		lastManual: lastManual,
		interval:   TickInterval,
		dwell:      AvoidDwell,
		debounce:   ManualDebounce,
		now:        time.Now,
	}
}

// Phase returns the current state machine phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Run ticks the state machine until the context is cancelled. The avoid
// dwell is tracked as a deadline, so this loop keeps observing the cancel
// and enable flags at every tick even mid-avoidance.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info("patrol controller started", "interval", c.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("patrol controller stopped")
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick advances the state machine by one step.
func (c *Controller) tick() {
	if !c.store.PatrolEnabled() || c.store.EmergencyStopped() {
		if c.phase != Idle {
			log.Debug("patrol idle", "was", c.phase.String())
		}
		c.phase = Idle
		return
	}

	now := c.now()

	// A recent manual command wins the drivetrain. Freeze in place: no
	// motion writes and no phase progress until the window passes.
	if c.manualRecent(now) {
		return
	}

	speed := c.store.PatrolSpeed()

	switch c.phase {
	case Idle:
		if c.store.ObstacleDetected() {
			return
		}
		c.phase = Advancing
		c.issue(state.Forward, speed)

	case Advancing:
		if c.store.ObstacleDetected() {
			c.phase = Avoiding
			c.avoidUntil = now.Add(c.dwell)
			log.Info("obstacle ahead, avoiding", "dwell", c.dwell)
			c.issue(state.Right, speed)
			return
		}
		c.issue(state.Forward, speed)

	case Avoiding:
		if now.Before(c.avoidUntil) {
			// Hold the turn; the command was already issued.
			return
		}
		c.phase = Advancing
		c.issue(state.Forward, speed)
	}
}

func (c *Controller) manualRecent(now time.Time) bool {
	if c.lastManual == nil {
		return false
	}
	last := c.lastManual()
	return !last.IsZero() && now.Sub(last) < c.debounce
}

func (c *Controller) issue(dir state.Direction, speed float64) {
	if err := c.motors.SetMotion(dir, speed); err != nil {
		// Lockout or hardware fault: nothing to do, next tick re-reads
		// the flags and will fall back to Idle if stopped.
		log.Debug("patrol motion rejected", "direction", dir, "error", err)
	}
}
