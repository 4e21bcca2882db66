// Package telemetry pushes state snapshots to the backend collector.
package telemetry

import (
	"context"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/protocol"
	"github.com/roverlabs/go-rover/pkg/state"
)

const (
	// PushInterval is the telemetry loop period.
	PushInterval = 5 * time.Second

	// ReconnectBackoff is how long the publisher waits after a failed
	// connect or send before trying again.
	ReconnectBackoff = 5 * time.Second
)

// Sink is a persistent outbound connection to a telemetry collector.
type Sink interface {
	Connect(ctx context.Context) error
	Send(msg *protocol.Message) error
	Close() error
}

// Publisher serializes store snapshots and pushes them to a sink on a
// fixed interval. It never buffers: each tick sends the current snapshot
// or nothing. Best effort, at most one attempt per tick.
type Publisher struct {
	store   *state.Store
	sink    Sink
	roverID string

	interval time.Duration
	backoff  time.Duration

	connected bool
}

// NewPublisher creates a publisher at the default 5s cadence.
func NewPublisher(store *state.Store, sink Sink, roverID string) *Publisher {
	return &Publisher{
		store:    store,
		sink:     sink,
		roverID:  roverID,
		interval: PushInterval,
		backoff:  ReconnectBackoff,
	}
}

// Connected reports the connection state machine's current state.
func (p *Publisher) Connected() bool {
	return p.connected
}

// Run pushes until the context is cancelled. Any connect or send failure
// drops the publisher back to disconnected; it retries forever and never
// takes the process down with it.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info("telemetry publisher started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			if p.connected {
				p.sink.Close()
			}
			log.Info("telemetry publisher stopped")
			return
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				log.Warn("telemetry push failed", "error", err)
				p.dropConnection()
				select {
				case <-ctx.Done():
					log.Info("telemetry publisher stopped")
					return
				case <-time.After(p.backoff):
				}
			}
		}
	}
}

// tick connects if needed and pushes the current snapshot. Snapshots are
// taken fresh at send time; there is no backlog of missed ticks.
func (p *Publisher) tick(ctx context.Context) error {
	if !p.connected {
		if err := p.sink.Connect(ctx); err != nil {
			return err
		}
		p.connected = true
		log.Info("telemetry sink connected")
	}

	status, err := protocol.NewMessage(protocol.TypeStatus, p.roverID, p.store.SystemStatus())
	if err != nil {
		return err
	}
	if err := p.sink.Send(status); err != nil {
		return err
	}

	sensorData, err := protocol.NewMessage(protocol.TypeSensorData, p.roverID, p.store.SensorData())
	if err != nil {
		return err
	}
	return p.sink.Send(sensorData)
}

func (p *Publisher) dropConnection() {
	if !p.connected {
		return
	}
	p.connected = false
	if err := p.sink.Close(); err != nil {
		log.Debug("telemetry sink close failed", "error", err)
	}
}
