package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roverlabs/go-rover/pkg/protocol"
)

const wsHandshakeTimeout = 10 * time.Second

// WebSocketSink pushes telemetry over a websocket connection to the
// backend, matching the collector's ws:// ingest endpoint.
type WebSocketSink struct {
	url  string
	conn *websocket.Conn
}

// NewWebSocketSink creates a sink for the given ws:// or wss:// URL.
func NewWebSocketSink(url string) *WebSocketSink {
	return &WebSocketSink{url: url}
}

// Connect dials the backend.
func (s *WebSocketSink) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	s.conn = conn
	return nil
}

// Send writes one message as a text frame.
func (s *WebSocketSink) Send(msg *protocol.Message) error {
	if s.conn == nil {
		return fmt.Errorf("websocket sink not connected")
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the connection.
func (s *WebSocketSink) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
