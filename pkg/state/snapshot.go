package state

// SensorData is the wire projection of sensor and drivetrain state, using
// the field names the backend dashboard expects. Motor speeds are reported
// on the 0-255 scale the frontend gauge uses.
type SensorData struct {
	IRSensors          [3]int  `json:"ir_sensors"`
	UltrasonicDistance float64 `json:"ultrasonic_distance"`
	ObstacleDetected   bool    `json:"obstacle_detected"`
	LeftMotorSpeed     float64 `json:"left_motor_speed"`
	RightMotorSpeed    float64 `json:"right_motor_speed"`
	MotorDirection     string  `json:"motor_direction"`
}

// SystemStatus is the wire projection of system health.
type SystemStatus struct {
	BatteryLevel   float64 `json:"battery_level"`
	BatteryVoltage float64 `json:"battery_voltage"`
	CPUTemp        float64 `json:"cpu_temp"`
	CPUUsage       float64 `json:"cpu_usage"`
	MemoryUsage    float64 `json:"memory_usage"`
	DiskUsage      float64 `json:"disk_usage"`
	WifiSignal     int     `json:"wifi_signal"`
	WifiSSID       string  `json:"wifi_ssid"`
	IPAddress      string  `json:"ip_address"`
	Uptime         float64 `json:"uptime"`
}

// Snapshot is a point-in-time copy of the whole store, safe to serialize
// after the call returns. Field groups are read independently so a
// snapshot is consistent per group, not across groups.
type Snapshot struct {
	Mode          Mode          `json:"mode"`
	EmergencyStop bool          `json:"emergency_stop"`
	AIEnabled     bool          `json:"ai_enabled"`
	PatrolEnabled bool          `json:"patrol_enabled"`
	Motion        Motion        `json:"motion"`
	Sensors       Sensors       `json:"sensors"`
	Battery       Battery       `json:"battery"`
	System        SystemMetrics `json:"system"`
}

// Snapshot returns a copy of the full store.
func (s *Store) Snapshot() Snapshot {
	s.flagsMu.RLock()
	snap := Snapshot{
		Mode:          s.mode,
		EmergencyStop: s.emergencyStop,
		AIEnabled:     s.aiEnabled,
		PatrolEnabled: s.patrolEnabled,
	}
	s.flagsMu.RUnlock()

	snap.Motion = s.Motion()
	snap.Sensors = s.Sensors()
	snap.Battery = s.Battery()
	snap.System = s.SystemMetrics()
	return snap
}

// SensorData builds the sensor wire projection from current state.
func (s *Store) SensorData() SensorData {
	sensors := s.Sensors()
	motion := s.Motion()

	return SensorData{
		IRSensors:          [3]int{boolToInt(sensors.IRLeft), boolToInt(sensors.IRCenter), boolToInt(sensors.IRRight)},
		UltrasonicDistance: sensors.UltrasonicCm,
		ObstacleDetected:   sensors.ObstacleDetected,
		LeftMotorSpeed:     motion.LeftSpeed * 255,
		RightMotorSpeed:    motion.RightSpeed * 255,
		MotorDirection:     string(motion.Direction),
	}
}

// SystemStatus builds the system health wire projection from current state.
func (s *Store) SystemStatus() SystemStatus {
	battery := s.Battery()
	sys := s.SystemMetrics()

	return SystemStatus{
		BatteryLevel:   battery.LevelPct,
		BatteryVoltage: battery.Voltage,
		CPUTemp:        sys.CPUTempC,
		CPUUsage:       sys.CPUPct,
		MemoryUsage:    sys.MemoryPct,
		DiskUsage:      sys.DiskPct,
		WifiSignal:     sys.WifiSignal,
		WifiSSID:       sys.WifiSSID,
		IPAddress:      sys.IPAddress,
		Uptime:         sys.UptimeSec,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
