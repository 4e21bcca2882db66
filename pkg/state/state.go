// Package state holds the rover's shared runtime state.
//
// Store is the single source of truth read and written by the sensor
// poller, patrol controller, command dispatcher and telemetry publisher,
// all running concurrently. Each field group (motion, sensors, battery,
// flags, system metrics) has its own lock so writers to unrelated groups
// never contend, and every write applies the whole group as one unit.
package state

import (
	"sync"
	"time"
)

// Direction is a drivetrain direction.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Left     Direction = "left"
	Right    Direction = "right"
	Stop     Direction = "stop"
)

// Mode says who is in charge of the motors.
type Mode string

const (
	ModeManual     Mode = "manual"
	ModeAutonomous Mode = "autonomous"
)

// ObstacleThresholdCm is the ultrasonic range below which an obstacle is
// considered detected. Strictly less-than: 20.0cm exactly is clear.
const ObstacleThresholdCm = 20.0

// BatteryFullVoltage is the pack voltage at 100% charge.
const BatteryFullVoltage = 12.0

// Motion is the last commanded drivetrain actuation.
type Motion struct {
	Direction  Direction `json:"direction"`
	LeftSpeed  float64   `json:"left_speed"`
	RightSpeed float64   `json:"right_speed"`
}

// Sensors is one complete proximity reading.
type Sensors struct {
	IRLeft           bool    `json:"ir_left"`
	IRCenter         bool    `json:"ir_center"`
	IRRight          bool    `json:"ir_right"`
	UltrasonicCm     float64 `json:"ultrasonic_distance"`
	ObstacleDetected bool    `json:"obstacle_detected"`
}

// Battery is the simulated pack charge state.
type Battery struct {
	LevelPct float64 `json:"battery_level"`
	Voltage  float64 `json:"battery_voltage"`
}

// SystemMetrics is an OS-level status snapshot, assigned wholesale by the
// sysinfo collector. The store never mutates individual fields.
type SystemMetrics struct {
	CPUTempC   float64 `json:"cpu_temp"`
	CPUPct     float64 `json:"cpu_usage"`
	MemoryPct  float64 `json:"memory_usage"`
	DiskPct    float64 `json:"disk_usage"`
	WifiSignal int     `json:"wifi_signal"`
	WifiSSID   string  `json:"wifi_ssid"`
	IPAddress  string  `json:"ip_address"`
	UptimeSec  float64 `json:"uptime"`
}

// Store owns all mutable rover state.
type Store struct {
	flagsMu       sync.RWMutex
	mode          Mode
	emergencyStop bool
	aiEnabled     bool
	patrolEnabled bool
	patrolSpeed   float64

	motionMu sync.RWMutex
	motion   Motion

	sensorsMu sync.RWMutex
	sensors   Sensors

	batteryMu sync.RWMutex
	battery   Battery

	systemMu sync.RWMutex
	system   SystemMetrics

	startTime time.Time
}

// New creates a Store with power-on defaults: manual mode, motors stopped,
// battery full, everything disabled.
func New() *Store {
	return &Store{
		mode:        ModeManual,
		patrolSpeed: 100.0 / 255.0,
		motion:      Motion{Direction: Stop},
		battery:     Battery{LevelPct: 100, Voltage: BatteryFullVoltage},
		startTime:   time.Now(),
	}
}

// StartTime reports when the store was created.
func (s *Store) StartTime() time.Time {
	return s.startTime
}

// ApplyMotion writes a whole motion update if the emergency stop is not
// engaged. The emergency flag is checked under lock inside the same call
// so a stop raised between a caller's check and its write cannot slip a
// stale motion through. Returns false if the write was refused.
func (s *Store) ApplyMotion(m Motion) bool {
	s.flagsMu.RLock()
	stopped := s.emergencyStop
	s.flagsMu.RUnlock()
	if stopped && m.Direction != Stop {
		return false
	}
	s.motionMu.Lock()
	s.motion = m
	s.motionMu.Unlock()
	return true
}

// ForceStop unconditionally sets motion to a full stop.
func (s *Store) ForceStop() {
	s.motionMu.Lock()
	s.motion = Motion{Direction: Stop}
	s.motionMu.Unlock()
}

// Motion returns the current motion as a copy.
func (s *Store) Motion() Motion {
	s.motionMu.RLock()
	defer s.motionMu.RUnlock()
	return s.motion
}

// SetSensorReadings applies one complete sensor tick. ObstacleDetected is
// derived here from the ultrasonic range; callers cannot set it directly.
func (s *Store) SetSensorReadings(irLeft, irCenter, irRight bool, distanceCm float64) {
	s.sensorsMu.Lock()
	s.sensors = Sensors{
		IRLeft:           irLeft,
		IRCenter:         irCenter,
		IRRight:          irRight,
		UltrasonicCm:     distanceCm,
		ObstacleDetected: distanceCm < ObstacleThresholdCm,
	}
	s.sensorsMu.Unlock()
}

// Sensors returns the latest sensor reading as a copy.
func (s *Store) Sensors() Sensors {
	s.sensorsMu.RLock()
	defer s.sensorsMu.RUnlock()
	return s.sensors
}

// ObstacleDetected reports whether the last range reading was inside the
// obstacle threshold.
func (s *Store) ObstacleDetected() bool {
	s.sensorsMu.RLock()
	defer s.sensorsMu.RUnlock()
	return s.sensors.ObstacleDetected
}

// DrainBattery lowers the battery level by pct, floored at zero, and
// recomputes the pack voltage in the same write.
func (s *Store) DrainBattery(pct float64) {
	s.batteryMu.Lock()
	level := s.battery.LevelPct - pct
	if level < 0 {
		level = 0
	}
	s.battery = Battery{
		LevelPct: level,
		Voltage:  BatteryFullVoltage * level / 100,
	}
	s.batteryMu.Unlock()
}

// Battery returns the battery state as a copy.
func (s *Store) Battery() Battery {
	s.batteryMu.RLock()
	defer s.batteryMu.RUnlock()
	return s.battery
}

// SetSystemMetrics replaces the OS metrics snapshot wholesale.
func (s *Store) SetSystemMetrics(m SystemMetrics) {
	s.systemMu.Lock()
	s.system = m
	s.systemMu.Unlock()
}

// SystemMetrics returns the latest OS metrics snapshot.
func (s *Store) SystemMetrics() SystemMetrics {
	s.systemMu.RLock()
	defer s.systemMu.RUnlock()
	return s.system
}

// Mode returns the current operating mode.
func (s *Store) Mode() Mode {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.mode
}

// SetMode switches between manual and autonomous operation.
func (s *Store) SetMode(m Mode) {
	s.flagsMu.Lock()
	s.mode = m
	s.flagsMu.Unlock()
}

// EmergencyStopped reports whether the emergency stop has been raised.
func (s *Store) EmergencyStopped() bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.emergencyStop
}

// RaiseEmergencyStop latches the emergency stop. There is deliberately no
// way to clear it: once raised it holds for the life of the process.
func (s *Store) RaiseEmergencyStop() {
	s.flagsMu.Lock()
	s.emergencyStop = true
	s.flagsMu.Unlock()
}

// AIEnabled reports whether AI detection is on.
func (s *Store) AIEnabled() bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.aiEnabled
}

// SetAIEnabled toggles AI detection.
func (s *Store) SetAIEnabled(on bool) {
	s.flagsMu.Lock()
	s.aiEnabled = on
	s.flagsMu.Unlock()
}

// PatrolEnabled reports whether patrol mode is on.
func (s *Store) PatrolEnabled() bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.patrolEnabled
}

// SetPatrolEnabled toggles patrol mode.
func (s *Store) SetPatrolEnabled(on bool) {
	s.flagsMu.Lock()
	s.patrolEnabled = on
	s.flagsMu.Unlock()
}

// PatrolSpeed returns the patrol cruise speed in [0,1].
func (s *Store) PatrolSpeed() float64 {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.patrolSpeed
}

// SetPatrolSpeed sets the patrol cruise speed in [0,1].
func (s *Store) SetPatrolSpeed(speed float64) {
	s.flagsMu.Lock()
	s.patrolSpeed = speed
	s.flagsMu.Unlock()
}
