// Package config provides configuration helpers for the rover firmware.
// All settings come from environment variables with sane defaults so the
// binary can run on a bare Pi with no config file.
package config

import (
	"os"
	"strconv"
)

// Defaults for a stock rover build.
const (
	DefaultPort       = "5000"
	DefaultBackendURL = "ws://localhost:3000"
	DefaultCameraDev  = 0
)

// Config holds the runtime configuration for the rover.
type Config struct {
	// RoverID identifies this rover in telemetry envelopes.
	RoverID string

	// Port for the HTTP control API.
	Port string

	// BackendURL is the telemetry collector endpoint (ws:// or wss://).
	BackendURL string

	// MQTTBrokerURL, when set, routes telemetry over MQTT instead of
	// the websocket backend.
	MQTTBrokerURL string

	// CameraDevice is the V4L2 device index.
	CameraDevice int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		RoverID:       envOr("ROVER_ID", ""),
		Port:          envOr("ROVER_PORT", DefaultPort),
		BackendURL:    envOr("BACKEND_URL", DefaultBackendURL),
		MQTTBrokerURL: envOr("TELEMETRY_MQTT_URL", ""),
		CameraDevice:  envIntOr("CAMERA_DEVICE", DefaultCameraDev),
		LogLevel:      envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
