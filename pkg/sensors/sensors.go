// Package sensors polls the proximity hardware and feeds the state store.
package sensors

import (
	"context"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/state"
)

const (
	// PollInterval is the sensor loop period (10Hz).
	PollInterval = 100 * time.Millisecond

	// ReadBackoff is how long the loop waits after a failed read before
	// trying again.
	ReadBackoff = time.Second

	// BatteryDrainPerTick is the simulated charge loss per poll, in
	// percentage points.
	BatteryDrainPerTick = 0.01
)

// Reader reads the physical proximity hardware. Implementations wrap the
// GPIO sensor stack; tests use a scripted mock.
type Reader interface {
	// ReadIR returns the three binary proximity inputs.
	ReadIR() (left, center, right bool, err error)

	// ReadDistanceCm returns the ultrasonic range in centimeters.
	ReadDistanceCm() (float64, error)
}

// Poller reads the sensors at a fixed rate and writes each complete
// reading into the store as one atomic sensor update.
type Poller struct {
	reader   Reader
	store    *state.Store
	interval time.Duration
	backoff  time.Duration
}

// NewPoller creates a sensor poller at the default 10Hz rate.
func NewPoller(reader Reader, store *state.Store) *Poller {
	return &Poller{
		reader:   reader,
		store:    store,
		interval: PollInterval,
		backoff:  ReadBackoff,
	}
}

// Run polls until the context is cancelled. A failed read is logged and
// skipped: previous values stay in the store and the loop backs off one
// second before the next attempt. No single failure ever ends the loop.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info("sensor poller started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("sensor poller stopped")
			return
		case <-ticker.C:
			if err := p.tick(); err != nil {
				log.Error("sensor read failed", "error", err)
				select {
				case <-ctx.Done():
					log.Info("sensor poller stopped")
					return
				case <-time.After(p.backoff):
				}
			}
		}
	}
}

// tick performs one poll: read all inputs, then apply the whole reading
// and the battery drain. On a read error nothing is written.
func (p *Poller) tick() error {
	irLeft, irCenter, irRight, err := p.reader.ReadIR()
	if err != nil {
		return err
	}

	distance, err := p.reader.ReadDistanceCm()
	if err != nil {
		return err
	}

	p.store.SetSensorReadings(irLeft, irCenter, irRight, distance)
	p.store.DrainBattery(BatteryDrainPerTick)
	return nil
}
