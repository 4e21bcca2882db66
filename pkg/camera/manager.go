package camera

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
)

// ErrUnavailable is returned when no camera hardware is present.
var ErrUnavailable = errors.New("camera: hardware unavailable")

// ErrUnknownAction is returned for an unrecognized camera action.
var ErrUnknownAction = errors.New("camera: unknown action")

// CaptureDir is where still captures are written.
const CaptureDir = "captures"

// Source produces JPEG-encoded frames from the camera hardware.
type Source interface {
	// ReadJPEG captures one frame encoded at the given quality.
	ReadJPEG(quality int) ([]byte, error)
	Close() error
}

// Manager owns the camera configuration and capture path. A nil source
// means the camera failed to initialize; config changes still apply but
// captures return ErrUnavailable.
type Manager struct {
	source Source

	mu     sync.RWMutex
	config Config
}

// NewManager creates a camera manager. source may be nil.
func NewManager(source Source) *Manager {
	return &Manager{
		source: source,
		config: DefaultConfig(),
	}
}

// Available reports whether camera hardware is present.
func (m *Manager) Available() bool {
	return m.source != nil
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig replaces the configuration, clamping all fields.
func (m *Manager) SetConfig(cfg Config) {
	m.mu.Lock()
	m.config = cfg.Normalize()
	m.mu.Unlock()
}

// Control implements the command collaborator interface: quality,
// brightness and contrast adjustments plus still capture.
func (m *Manager) Control(action string, value interface{}) error {
	switch action {
	case "quality":
		m.adjust(func(c *Config) { c.Quality = intValue(value, c.Quality) })
	case "brightness":
		m.adjust(func(c *Config) { c.Brightness = intValue(value, c.Brightness) })
	case "contrast":
		m.adjust(func(c *Config) { c.Contrast = intValue(value, c.Contrast) })
	case "capture":
		_, err := m.Capture()
		return err
	default:
		return ErrUnknownAction
	}
	return nil
}

// Frame captures one JPEG frame at the configured quality.
func (m *Manager) Frame() ([]byte, error) {
	if m.source == nil {
		return nil, ErrUnavailable
	}
	return m.source.ReadJPEG(m.GetConfig().Quality)
}

// Capture writes a still to the captures directory and returns its path.
func (m *Manager) Capture() (string, error) {
	frame, err := m.Frame()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(CaptureDir, 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	path := filepath.Join(CaptureDir, fmt.Sprintf("capture_%d.jpg", time.Now().Unix()))
	if err := os.WriteFile(path, frame, 0o644); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}

	log.Info("image captured", "path", path)
	return path, nil
}

// Close releases the camera hardware.
func (m *Manager) Close() error {
	if m.source == nil {
		return nil
	}
	return m.source.Close()
}

func (m *Manager) adjust(apply func(*Config)) {
	m.mu.Lock()
	cfg := m.config
	apply(&cfg)
	m.config = cfg.Normalize()
	m.mu.Unlock()
}

func intValue(v interface{}, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}
