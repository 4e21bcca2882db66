package motor

import (
	"errors"
	"testing"

	"github.com/roverlabs/go-rover/pkg/state"
)

func newTestActuator() (*Actuator, *MockWheel, *MockWheel, *state.Store) {
	left := NewMockWheel()
	right := NewMockWheel()
	store := state.New()
	return New(left, right, store), left, right, store
}

func TestClamp(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{-0.001, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
		{255, 1},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetMotion_DirectionMapping(t *testing.T) {
	cases := []struct {
		dir     state.Direction
		leftOp  string
		rightOp string
	}{
		{state.Forward, "forward", "forward"},
		{state.Backward, "backward", "backward"},
		{state.Left, "backward", "forward"},
		{state.Right, "forward", "backward"},
		{state.Stop, "stop", "stop"},
	}

	for _, tc := range cases {
		a, left, right, store := newTestActuator()
		if err := a.SetMotion(tc.dir, 0.6); err != nil {
			t.Fatalf("SetMotion(%v): %v", tc.dir, err)
		}
		if got := left.Last().Op; got != tc.leftOp {
			t.Errorf("%v: left wheel op got %q, want %q", tc.dir, got, tc.leftOp)
		}
		if got := right.Last().Op; got != tc.rightOp {
			t.Errorf("%v: right wheel op got %q, want %q", tc.dir, got, tc.rightOp)
		}
		if store.Motion().Direction != tc.dir {
			t.Errorf("%v: store direction got %v", tc.dir, store.Motion().Direction)
		}
	}
}

func TestSetMotion_ClampsSpeed(t *testing.T) {
	a, left, _, store := newTestActuator()

	if err := a.SetMotion(state.Forward, 3.5); err != nil {
		t.Fatal(err)
	}
	if left.Last().Speed != 1 {
		t.Errorf("wheel speed: got %v, want 1", left.Last().Speed)
	}
	m := store.Motion()
	if m.LeftSpeed != 1 || m.RightSpeed != 1 {
		t.Errorf("stored speeds: got %v/%v, want 1/1", m.LeftSpeed, m.RightSpeed)
	}

	if err := a.SetMotion(state.Backward, -2); err != nil {
		t.Fatal(err)
	}
	m = store.Motion()
	if m.LeftSpeed != 0 || m.RightSpeed != 0 {
		t.Errorf("stored speeds after negative input: got %v/%v, want 0/0", m.LeftSpeed, m.RightSpeed)
	}
}

func TestSetMotion_StopZeroesSpeeds(t *testing.T) {
	a, _, _, store := newTestActuator()

	a.SetMotion(state.Forward, 0.8)
	if err := a.SetMotion(state.Stop, 0.8); err != nil {
		t.Fatal(err)
	}

	m := store.Motion()
	if m.Direction != state.Stop || m.LeftSpeed != 0 || m.RightSpeed != 0 {
		t.Errorf("motion after stop: got %+v, want stop/0/0", m)
	}
}

func TestSetMotion_EmergencyLockout(t *testing.T) {
	a, left, right, store := newTestActuator()

	a.SetMotion(state.Forward, 0.8)
	a.TriggerEmergencyStop()

	err := a.SetMotion(state.Forward, 0.8)
	if !errors.Is(err, ErrEmergencyLockout) {
		t.Fatalf("SetMotion after stop: got %v, want ErrEmergencyLockout", err)
	}

	m := store.Motion()
	if m.Direction != state.Stop || m.LeftSpeed != 0 || m.RightSpeed != 0 {
		t.Errorf("motion after lockout: got %+v, want stop/0/0", m)
	}
	if left.Last().Op != "stop" || right.Last().Op != "stop" {
		t.Error("wheels not halted after rejected motion")
	}
}

func TestTriggerEmergencyStop_Idempotent(t *testing.T) {
	a, _, _, store := newTestActuator()

	a.TriggerEmergencyStop()
	a.TriggerEmergencyStop()

	if !store.EmergencyStopped() {
		t.Error("emergency stop not latched")
	}
	if store.Motion().Direction != state.Stop {
		t.Errorf("motion: got %v, want stop", store.Motion().Direction)
	}
}

func TestActuator_NilWheels(t *testing.T) {
	store := state.New()
	a := New(nil, nil, store)

	// No hardware: state still tracks intent, nothing panics.
	if err := a.SetMotion(state.Forward, 0.4); err != nil {
		t.Fatalf("SetMotion with nil wheels: %v", err)
	}
	if store.Motion().Direction != state.Forward {
		t.Errorf("store direction: got %v", store.Motion().Direction)
	}

	a.TriggerEmergencyStop()
	if !store.EmergencyStopped() {
		t.Error("emergency stop not latched with nil wheels")
	}
}
