// Package protocol defines the JSON message types shared between the
// rover, the backend collector, and dashboard clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies a telemetry message.
type MessageType string

const (
	// TypeStatus carries a system health snapshot.
	TypeStatus MessageType = "status"

	// TypeSensorData carries a sensor/drivetrain snapshot.
	TypeSensorData MessageType = "sensor_data"
)

// Message is the envelope for all telemetry pushes.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp string          `json:"timestamp"`
	RoverID   string          `json:"rover_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(msgType MessageType, roverID string, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s data: %w", msgType, err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RoverID:   roverID,
		Data:      raw,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

// CommandRequest is an inbound control command.
type CommandRequest struct {
	Command string      `json:"command"`
	Action  string      `json:"action"`
	Value   interface{} `json:"value,omitempty"`
}

// CommandResponse is the control-plane reply. Success is always explicit;
// failures are never silent.
type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful response.
func OK(message string) CommandResponse {
	return CommandResponse{Success: true, Message: message}
}

// Fail builds a failed response from an error.
func Fail(err error) CommandResponse {
	return CommandResponse{Success: false, Error: err.Error()}
}
