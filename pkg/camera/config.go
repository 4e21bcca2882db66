// Package camera provides runtime-configurable camera settings and frame
// capture for the rover.
package camera

// Config holds the camera parameters adjustable via the control API.
type Config struct {
	// Quality is JPEG quality, 0-100.
	Quality int `json:"camera_quality"`

	// Brightness adjustment, -100 to 100.
	Brightness int `json:"camera_brightness"`

	// Contrast adjustment, -100 to 100.
	Contrast int `json:"camera_contrast"`
}

// DefaultConfig returns the power-on camera configuration.
func DefaultConfig() Config {
	return Config{
		Quality:    12,
		Brightness: 50,
		Contrast:   0,
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Normalize clamps all fields into their valid ranges. Out-of-range
// values are clamped, never rejected.
func (c Config) Normalize() Config {
	return Config{
		Quality:    clampInt(c.Quality, 0, 100),
		Brightness: clampInt(c.Brightness, -100, 100),
		Contrast:   clampInt(c.Contrast, -100, 100),
	}
}
