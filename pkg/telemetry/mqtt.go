package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/roverlabs/go-rover/pkg/protocol"
)

const mqttConnectTimeout = 10 * time.Second

// MQTTSink pushes telemetry to an MQTT broker instead of the websocket
// backend, for fleets that aggregate rovers through a broker.
type MQTTSink struct {
	brokerURL string
	clientID  string
	topic     string

	cm *autopaho.ConnectionManager
}

// NewMQTTSink creates a sink publishing to rover/<id>/telemetry.
func NewMQTTSink(brokerURL, roverID string) *MQTTSink {
	return &MQTTSink{
		brokerURL: brokerURL,
		clientID:  fmt.Sprintf("go-rover-%s", roverID),
		topic:     fmt.Sprintf("rover/%s/telemetry", roverID),
	}
}

// Connect establishes the broker connection and waits for it to come up.
func (s *MQTTSink) Connect(ctx context.Context) error {
	serverURL, err := url.Parse(s.brokerURL)
	if err != nil {
		return fmt.Errorf("invalid broker URL: %w", err)
	}

	cfg := autopaho.ClientConfig{
		ServerUrls: []*url.URL{serverURL},
		KeepAlive:  20,
		ClientConfig: paho.ClientConfig{
			ClientID: s.clientID,
		},
	}

	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
	defer cancel()
	if err := cm.AwaitConnection(waitCtx); err != nil {
		cm.Disconnect(ctx)
		return fmt.Errorf("mqtt await connection: %w", err)
	}

	s.cm = cm
	return nil
}

// Send publishes one message at QoS 0. Telemetry is best effort; a lost
// snapshot is replaced by the next tick's anyway.
func (s *MQTTSink) Send(msg *protocol.Message) error {
	if s.cm == nil {
		return fmt.Errorf("mqtt sink not connected")
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), mqttConnectTimeout)
	defer cancel()
	_, err = s.cm.Publish(pubCtx, &paho.Publish{
		Topic:   s.topic,
		QoS:     0,
		Payload: data,
	})
	return err
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	if s.cm == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.cm.Disconnect(ctx)
	s.cm = nil
	return err
}
