package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// V4L2Source captures frames from a V4L2 device through gocv.
type V4L2Source struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// OpenV4L2 opens the given device index. Returns an error when no camera
// is attached so the caller can degrade to a camera-less rover.
func OpenV4L2(device int) (*V4L2Source, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d: %w", device, ErrUnavailable)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, 640)
	capture.Set(gocv.VideoCaptureFrameHeight, 480)
	capture.Set(gocv.VideoCaptureFPS, 30)

	return &V4L2Source{
		capture: capture,
		frame:   gocv.NewMat(),
	}, nil
}

// ReadJPEG captures one frame and encodes it as JPEG.
func (s *V4L2Source) ReadJPEG(quality int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capture.Read(&s.frame) || s.frame.Empty() {
		return nil, fmt.Errorf("camera read: %w", ErrUnavailable)
	}

	buf, err := gocv.IMEncodeWithParams(".jpg", s.frame, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the device.
func (s *V4L2Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Close()
	return s.capture.Close()
}
