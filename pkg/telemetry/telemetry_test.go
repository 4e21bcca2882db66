package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roverlabs/go-rover/pkg/protocol"
	"github.com/roverlabs/go-rover/pkg/state"
)

// mockSink scripts connect/send failures and records sent messages.
type mockSink struct {
	mu         sync.Mutex
	connectErr error
	sendErr    error
	connects   int
	closes     int
	sent       []*protocol.Message
}

func (m *mockSink) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	return m.connectErr
}

func (m *mockSink) Send(msg *protocol.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockSink) sentTypes() []protocol.MessageType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]protocol.MessageType, len(m.sent))
	for i, msg := range m.sent {
		types[i] = msg.Type
	}
	return types
}

func TestTick_SendsStatusAndSensorData(t *testing.T) {
	store := state.New()
	store.SetSensorReadings(true, false, false, 12)
	sink := &mockSink{}
	p := NewPublisher(store, sink, "rover-1")

	if err := p.tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !p.Connected() {
		t.Error("publisher not connected after successful tick")
	}

	types := sink.sentTypes()
	if len(types) != 2 || types[0] != protocol.TypeStatus || types[1] != protocol.TypeSensorData {
		t.Errorf("sent types: got %v, want [status sensor_data]", types)
	}

	var data state.SensorData
	if err := sink.sent[1].ParseData(&data); err != nil {
		t.Fatal(err)
	}
	if !data.ObstacleDetected {
		t.Error("sensor snapshot lost obstacle flag")
	}
	if sink.sent[0].RoverID != "rover-1" {
		t.Errorf("rover id: got %q", sink.sent[0].RoverID)
	}
}

func TestTick_ConnectFailureStaysDisconnected(t *testing.T) {
	sink := &mockSink{connectErr: errors.New("refused")}
	p := NewPublisher(state.New(), sink, "rover-1")

	for i := 0; i < 3; i++ {
		if err := p.tick(context.Background()); err == nil {
			t.Fatal("tick succeeded with failing connect")
		}
		if p.Connected() {
			t.Fatal("publisher claims connected after failed connect")
		}
	}
	if sink.connects != 3 {
		t.Errorf("connect attempts: got %d, want 3", sink.connects)
	}
	if len(sink.sent) != 0 {
		t.Errorf("messages sent while disconnected: %d", len(sink.sent))
	}
}

func TestRun_RetriesForeverAfterFailures(t *testing.T) {
	sink := &mockSink{connectErr: errors.New("refused")}
	p := NewPublisher(state.New(), sink, "rover-1")
	p.interval = time.Millisecond
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(15 * time.Millisecond)

	// Collector comes up: the publisher recovers on its own.
	sink.mu.Lock()
	sink.connectErr = nil
	sink.mu.Unlock()

	time.Sleep(15 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not observe cancellation")
	}

	if sink.connects < 3 {
		t.Errorf("publisher stopped retrying: %d connects", sink.connects)
	}
	if len(sink.sent) == 0 {
		t.Error("publisher never recovered after collector came up")
	}
}

func TestRun_SendFailureDropsConnection(t *testing.T) {
	sink := &mockSink{}
	p := NewPublisher(state.New(), sink, "rover-1")

	if err := p.tick(context.Background()); err != nil {
		t.Fatal(err)
	}

	sink.mu.Lock()
	sink.sendErr = errors.New("broken pipe")
	sink.mu.Unlock()

	if err := p.tick(context.Background()); err == nil {
		t.Fatal("tick succeeded with failing send")
	}
	p.dropConnection()

	if p.Connected() {
		t.Error("publisher still connected after send failure")
	}
	if sink.closes != 1 {
		t.Errorf("sink closes: got %d, want 1", sink.closes)
	}
}
