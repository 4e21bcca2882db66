package state

import (
	"math"
	"sync"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestNew_Defaults(t *testing.T) {
	s := New()

	if s.Mode() != ModeManual {
		t.Errorf("Mode: got %v, want manual", s.Mode())
	}
	if s.EmergencyStopped() {
		t.Error("EmergencyStopped: got true, want false")
	}
	if s.AIEnabled() || s.PatrolEnabled() {
		t.Error("feature toggles should default to off")
	}
	if s.Motion().Direction != Stop {
		t.Errorf("Motion direction: got %v, want stop", s.Motion().Direction)
	}
	b := s.Battery()
	if b.LevelPct != 100 {
		t.Errorf("Battery level: got %v, want 100", b.LevelPct)
	}
	if !floatEquals(b.Voltage, 12.0) {
		t.Errorf("Battery voltage: got %v, want 12.0", b.Voltage)
	}
	if !floatEquals(s.PatrolSpeed(), 100.0/255.0) {
		t.Errorf("PatrolSpeed: got %v, want %v", s.PatrolSpeed(), 100.0/255.0)
	}
}

func TestApplyMotion_WholeGroupWrite(t *testing.T) {
	s := New()

	ok := s.ApplyMotion(Motion{Direction: Forward, LeftSpeed: 0.8, RightSpeed: 0.8})
	if !ok {
		t.Fatal("ApplyMotion refused with no emergency stop")
	}

	m := s.Motion()
	if m.Direction != Forward || m.LeftSpeed != 0.8 || m.RightSpeed != 0.8 {
		t.Errorf("Motion: got %+v, want forward/0.8/0.8", m)
	}
}

func TestApplyMotion_RefusedWhileStopped(t *testing.T) {
	s := New()
	s.ApplyMotion(Motion{Direction: Forward, LeftSpeed: 0.5, RightSpeed: 0.5})
	s.RaiseEmergencyStop()
	s.ForceStop()

	if ok := s.ApplyMotion(Motion{Direction: Forward, LeftSpeed: 0.8, RightSpeed: 0.8}); ok {
		t.Error("ApplyMotion accepted motion while emergency stopped")
	}

	// The stop direction itself is still allowed through.
	if ok := s.ApplyMotion(Motion{Direction: Stop}); !ok {
		t.Error("ApplyMotion refused a stop while emergency stopped")
	}

	m := s.Motion()
	if m.Direction != Stop || m.LeftSpeed != 0 || m.RightSpeed != 0 {
		t.Errorf("Motion after lockout: got %+v, want stop/0/0", m)
	}
}

func TestObstacleDetected_Boundary(t *testing.T) {
	cases := []struct {
		distance float64
		want     bool
	}{
		{19.999, true},
		{20.0, false},
		{20.001, false},
		{0, true},
		{150, false},
	}

	s := New()
	for _, tc := range cases {
		s.SetSensorReadings(false, false, false, tc.distance)
		if got := s.ObstacleDetected(); got != tc.want {
			t.Errorf("ObstacleDetected at %vcm: got %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestDrainBattery_MonotoneAndFloored(t *testing.T) {
	s := New()

	prev := s.Battery().LevelPct
	for i := 0; i < 50; i++ {
		s.DrainBattery(0.01)
		b := s.Battery()
		if b.LevelPct > prev {
			t.Fatalf("battery level rose from %v to %v", prev, b.LevelPct)
		}
		if !floatEquals(b.Voltage, 12.0*b.LevelPct/100) {
			t.Fatalf("voltage %v does not match level %v", b.Voltage, b.LevelPct)
		}
		prev = b.LevelPct
	}

	s.DrainBattery(1000)
	b := s.Battery()
	if b.LevelPct != 0 {
		t.Errorf("battery level: got %v, want 0 floor", b.LevelPct)
	}
	if b.Voltage != 0 {
		t.Errorf("voltage: got %v, want 0", b.Voltage)
	}
}

func TestSnapshot_IndependentOfStore(t *testing.T) {
	s := New()
	s.SetSensorReadings(true, false, true, 42)
	s.ApplyMotion(Motion{Direction: Left, LeftSpeed: 0.3, RightSpeed: 0.3})

	snap := s.Snapshot()

	s.SetSensorReadings(false, false, false, 5)
	s.ForceStop()

	if snap.Sensors.UltrasonicCm != 42 {
		t.Errorf("snapshot sensors mutated: got %v", snap.Sensors.UltrasonicCm)
	}
	if snap.Motion.Direction != Left {
		t.Errorf("snapshot motion mutated: got %v", snap.Motion.Direction)
	}
}

func TestSensorData_Projection(t *testing.T) {
	s := New()
	s.SetSensorReadings(true, false, true, 12.5)
	s.ApplyMotion(Motion{Direction: Forward, LeftSpeed: 0.8, RightSpeed: 0.8})

	d := s.SensorData()
	if d.IRSensors != [3]int{1, 0, 1} {
		t.Errorf("IRSensors: got %v", d.IRSensors)
	}
	if !d.ObstacleDetected {
		t.Error("ObstacleDetected: got false, want true at 12.5cm")
	}
	if !floatEquals(d.LeftMotorSpeed, 204) || !floatEquals(d.RightMotorSpeed, 204) {
		t.Errorf("motor speeds: got %v/%v, want 204/204", d.LeftMotorSpeed, d.RightMotorSpeed)
	}
	if d.MotorDirection != "forward" {
		t.Errorf("MotorDirection: got %q", d.MotorDirection)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.ApplyMotion(Motion{Direction: Forward, LeftSpeed: 0.5, RightSpeed: 0.5})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetSensorReadings(true, true, false, float64(j))
				s.DrainBattery(0.001)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Snapshot()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetPatrolEnabled(j%2 == 0)
				_ = s.PatrolSpeed()
			}
		}()
	}
	wg.Wait()

	// Motion must never tear: both speeds always travel with the direction.
	m := s.Motion()
	if m.Direction == Forward && (m.LeftSpeed != 0.5 || m.RightSpeed != 0.5) {
		t.Errorf("torn motion write: %+v", m)
	}
}
