package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewMessage_RoundTrip(t *testing.T) {
	payload := map[string]float64{"battery_level": 87.5}

	msg, err := NewMessage(TypeStatus, "rover-1", payload)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != TypeStatus {
		t.Errorf("Type: got %v", msg.Type)
	}
	if msg.Timestamp == "" {
		t.Error("Timestamp not set")
	}

	data, err := msg.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.RoverID != "rover-1" {
		t.Errorf("RoverID: got %q", parsed.RoverID)
	}

	var out map[string]float64
	if err := parsed.ParseData(&out); err != nil {
		t.Fatal(err)
	}
	if out["battery_level"] != 87.5 {
		t.Errorf("data: got %v", out)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	if _, err := ParseMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCommandResponse_FailCarriesError(t *testing.T) {
	resp := Fail(errors.New("unknown command"))
	if resp.Success {
		t.Error("Success: got true")
	}

	data, _ := json.Marshal(resp)
	var decoded map[string]interface{}
	json.Unmarshal(data, &decoded)
	if decoded["error"] != "unknown command" {
		t.Errorf("error field: got %v", decoded["error"])
	}
	if _, present := decoded["success"]; !present {
		t.Error("success field must always be serialized")
	}
}
