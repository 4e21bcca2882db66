// Package rover is the supervisor: it owns the state store, wires the
// control components to their hardware, and runs every loop's lifecycle.
package rover

import (
	"context"
	"io"
	"sync"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/ai"
	"github.com/roverlabs/go-rover/pkg/audio"
	"github.com/roverlabs/go-rover/pkg/camera"
	"github.com/roverlabs/go-rover/pkg/command"
	"github.com/roverlabs/go-rover/pkg/motor"
	"github.com/roverlabs/go-rover/pkg/patrol"
	"github.com/roverlabs/go-rover/pkg/sensors"
	"github.com/roverlabs/go-rover/pkg/state"
	"github.com/roverlabs/go-rover/pkg/sysinfo"
	"github.com/roverlabs/go-rover/pkg/telemetry"
)

// Hardware is the set of injected device handles. Any field may be nil;
// the affected component degrades to a no-op and the rest of the rover
// keeps running.
type Hardware struct {
	LeftWheel    motor.Wheel
	RightWheel   motor.Wheel
	SensorReader sensors.Reader
	CameraSource camera.Source
	AudioSink    audio.Sink
	Detector     ai.Detector
}

// Rover supervises all control loops over one shared state store.
type Rover struct {
	Store      *state.Store
	Motors     *motor.Actuator
	Dispatcher *command.Dispatcher
	Camera     *camera.Manager
	Audio      *audio.Player
	AI         *ai.Loop

	poller    *sensors.Poller
	patroller *patrol.Controller
	publisher *telemetry.Publisher
	collector *sysinfo.Collector

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closers []io.Closer
}

// New assembles a rover from hardware handles and a telemetry sink.
// sink may be nil to run without telemetry (e.g. on the bench).
func New(hw Hardware, sink telemetry.Sink, roverID string) *Rover {
	store := state.New()
	motors := motor.New(hw.LeftWheel, hw.RightWheel, store)
	cam := camera.NewManager(hw.CameraSource)
	player := audio.NewPlayer(hw.AudioSink)

	var camCollab, audioCollab command.Collaborator
	if cam.Available() {
		camCollab = cam
	}
	audioCollab = player

	dispatcher := command.New(store, motors, camCollab, audioCollab)

	reader := hw.SensorReader
	if reader == nil {
		log.Warn("sensor hardware absent, using simulated readings")
		reader = sensors.NewSimReader()
	}

	r := &Rover{
		Store:      store,
		Motors:     motors,
		Dispatcher: dispatcher,
		Camera:     cam,
		Audio:      player,
		AI:         ai.NewLoop(store, hw.Detector, cam),
		poller:     sensors.NewPoller(reader, store),
		patroller:  patrol.New(store, motors, dispatcher.LastManualMotor),
		collector:  sysinfo.NewCollector(store.StartTime()),
	}
	if sink != nil {
		r.publisher = telemetry.NewPublisher(store, sink, roverID)
	}

	r.closers = append(r.closers, cam, player)
	return r
}

// Start launches every loop. Loops share a context derived from ctx and
// observe cancellation within one loop period.
func (r *Rover) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.run(func() { r.poller.Run(ctx) })
	r.run(func() { r.patroller.Run(ctx) })
	r.run(func() { r.AI.Run(ctx) })
	r.run(func() { r.collector.Run(ctx, r.Store) })
	if r.publisher != nil {
		r.run(func() { r.publisher.Run(ctx) })
	}

	log.Info("rover started")
}

// Stop shuts the rover down: cancel all loops, latch the emergency stop
// so no in-flight tick can drive the motors, wait for the loops to exit,
// then release hardware handles.
func (r *Rover) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.Motors.TriggerEmergencyStop()
	r.wg.Wait()

	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			log.Error("hardware close failed", "error", err)
		}
	}
	log.Info("rover stopped")
}

func (r *Rover) run(f func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		f()
	}()
}
