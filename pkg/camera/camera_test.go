package camera

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// mockSource returns a fixed frame.
type mockSource struct {
	frame       []byte
	err         error
	lastQuality int
	closed      bool
}

func (m *mockSource) ReadJPEG(quality int) ([]byte, error) {
	m.lastQuality = quality
	if m.err != nil {
		return nil, m.err
	}
	return m.frame, nil
}

func (m *mockSource) Close() error {
	m.closed = true
	return nil
}

func TestConfig_Normalize(t *testing.T) {
	cfg := Config{Quality: 250, Brightness: -300, Contrast: 40}.Normalize()
	if cfg.Quality != 100 {
		t.Errorf("Quality: got %d, want 100", cfg.Quality)
	}
	if cfg.Brightness != -100 {
		t.Errorf("Brightness: got %d, want -100", cfg.Brightness)
	}
	if cfg.Contrast != 40 {
		t.Errorf("Contrast: got %d, want 40", cfg.Contrast)
	}
}

func TestControl_AdjustsAndClamps(t *testing.T) {
	m := NewManager(&mockSource{frame: []byte("jpeg")})

	if err := m.Control("quality", float64(80)); err != nil {
		t.Fatal(err)
	}
	if got := m.GetConfig().Quality; got != 80 {
		t.Errorf("quality: got %d, want 80", got)
	}

	if err := m.Control("brightness", float64(500)); err != nil {
		t.Fatal(err)
	}
	if got := m.GetConfig().Brightness; got != 100 {
		t.Errorf("brightness: got %d, want clamped 100", got)
	}

	if err := m.Control("defog", nil); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action: got %v", err)
	}
}

func TestFrame_UsesConfiguredQuality(t *testing.T) {
	src := &mockSource{frame: []byte("jpeg")}
	m := NewManager(src)
	m.Control("quality", float64(33))

	if _, err := m.Frame(); err != nil {
		t.Fatal(err)
	}
	if src.lastQuality != 33 {
		t.Errorf("capture quality: got %d, want 33", src.lastQuality)
	}
}

func TestFrame_Unavailable(t *testing.T) {
	m := NewManager(nil)

	if _, err := m.Frame(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}

	// Config changes still apply without hardware.
	if err := m.Control("contrast", float64(10)); err != nil {
		t.Errorf("config change without hardware: %v", err)
	}
}

func TestCapture_WritesFile(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(cwd)

	m := NewManager(&mockSource{frame: []byte("jpeg-bytes")})

	path, err := m.Capture()
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, path))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("capture contents: got %q", data)
	}
}
