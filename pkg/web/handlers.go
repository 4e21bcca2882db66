package web

import (
	"bufio"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/audio"
	"github.com/roverlabs/go-rover/pkg/camera"
	"github.com/roverlabs/go-rover/pkg/command"
	"github.com/roverlabs/go-rover/pkg/motor"
	"github.com/roverlabs/go-rover/pkg/protocol"
	"github.com/roverlabs/go-rover/pkg/state"
)

// handleIdentity reports who we are; useful as a liveness probe.
func (s *Server) handleIdentity(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":     "go-rover",
		"rover_id": s.roverID,
		"status":   "online",
	})
}

// handleStatus returns battery, mode, motor, and host metrics.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.store.SystemStatus())
}

// handleSensors returns the latest sensor readings.
func (s *Server) handleSensors(c *fiber.Ctx) error {
	return c.JSON(s.store.SensorData())
}

// handleData returns the full state snapshot.
func (s *Server) handleData(c *fiber.Ctx) error {
	return c.JSON(s.store.Snapshot())
}

// handleControl routes one command through the dispatcher.
func (s *Server) handleControl(c *fiber.Ctx) error {
	var req protocol.CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Fail(fmt.Errorf("invalid request body: %w", err)))
	}

	if err := s.dispatcher.Dispatch(req.Command, req.Action, req.Value); err != nil {
		return c.Status(controlStatus(err)).JSON(protocol.Fail(err))
	}
	return c.JSON(protocol.OK(req.Command + " executed"))
}

// controlStatus maps dispatch errors onto HTTP statuses.
func controlStatus(err error) int {
	switch {
	case errors.Is(err, command.ErrUnknownCommand),
		errors.Is(err, command.ErrUnknownAction),
		errors.Is(err, camera.ErrUnknownAction),
		errors.Is(err, audio.ErrUnknownAction),
		errors.Is(err, audio.ErrUnknownTone):
		return fiber.StatusBadRequest
	case errors.Is(err, motor.ErrEmergencyLockout):
		return fiber.StatusConflict
	case errors.Is(err, command.ErrHardwareUnavailable),
		errors.Is(err, camera.ErrUnavailable),
		errors.Is(err, audio.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// configView is the GET /api/config payload.
type configView struct {
	camera.Config
	Mode          state.Mode `json:"mode"`
	AIEnabled     bool       `json:"ai_enabled"`
	PatrolEnabled bool       `json:"patrol_enabled"`
}

// configUpdate is the POST /api/config payload. Pointer fields so absent
// keys leave the current value alone.
type configUpdate struct {
	Quality       *int        `json:"camera_quality"`
	Brightness    *int        `json:"camera_brightness"`
	Contrast      *int        `json:"camera_contrast"`
	Mode          *state.Mode `json:"mode"`
	AIEnabled     *bool       `json:"ai_enabled"`
	PatrolEnabled *bool       `json:"patrol_enabled"`
}

func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	view := configView{
		Mode:          s.store.Mode(),
		AIEnabled:     s.store.AIEnabled(),
		PatrolEnabled: s.store.PatrolEnabled(),
	}
	if s.camera != nil {
		view.Config = s.camera.GetConfig()
	}
	return c.JSON(view)
}

func (s *Server) handleSetConfig(c *fiber.Ctx) error {
	var req configUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Fail(fmt.Errorf("invalid request body: %w", err)))
	}

	if s.camera != nil && (req.Quality != nil || req.Brightness != nil || req.Contrast != nil) {
		cfg := s.camera.GetConfig()
		if req.Quality != nil {
			cfg.Quality = *req.Quality
		}
		if req.Brightness != nil {
			cfg.Brightness = *req.Brightness
		}
		if req.Contrast != nil {
			cfg.Contrast = *req.Contrast
		}
		s.camera.SetConfig(cfg)
	}

	if req.Mode != nil {
		switch *req.Mode {
		case state.ModeManual, state.ModeAutonomous:
			s.store.SetMode(*req.Mode)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(protocol.Fail(fmt.Errorf("unknown mode %q", *req.Mode)))
		}
	}
	if req.AIEnabled != nil {
		s.store.SetAIEnabled(*req.AIEnabled)
	}
	if req.PatrolEnabled != nil {
		s.store.SetPatrolEnabled(*req.PatrolEnabled)
	}

	return s.handleGetConfig(c)
}

// handleCameraStream serves an MJPEG stream over multipart/x-mixed-replace.
func (s *Server) handleCameraStream(c *fiber.Ctx) error {
	if s.camera == nil || !s.camera.Available() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(protocol.Fail(camera.ErrUnavailable))
	}

	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for {
			frame, err := s.camera.Frame()
			if err != nil {
				log.Warn("mjpeg frame read failed", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := w.WriteString("\r\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
			time.Sleep(streamFrameInterval)
		}
	})
	return nil
}

// handleCameraCapture saves one still and returns its path.
func (s *Server) handleCameraCapture(c *fiber.Ctx) error {
	if s.camera == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(protocol.Fail(camera.ErrUnavailable))
	}
	path, err := s.camera.Capture()
	if err != nil {
		return c.Status(controlStatus(err)).JSON(protocol.Fail(err))
	}
	return c.JSON(fiber.Map{"success": true, "path": path})
}

// audioPlayRequest accepts a tone by name or numeric id.
type audioPlayRequest struct {
	Tone  string      `json:"tone"`
	Value interface{} `json:"value"`
}

func (s *Server) handleAudioPlay(c *fiber.Ctx) error {
	var req audioPlayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Fail(fmt.Errorf("invalid request body: %w", err)))
	}

	value := req.Value
	if req.Tone != "" {
		value = req.Tone
	}
	if err := s.audio.Control("play", value); err != nil {
		return c.Status(controlStatus(err)).JSON(protocol.Fail(err))
	}
	return c.JSON(protocol.OK("playing"))
}

// handleSystemRestart reboots the host. The response goes out on a best
// effort; the reboot races the write.
func (s *Server) handleSystemRestart(c *fiber.Ctx) error {
	log.Warn("system restart requested")
	if err := s.restart(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(protocol.Fail(err))
	}
	return c.JSON(protocol.OK("system restart initiated"))
}

// rebootHost shells out the way the sensors shell out for wifi info;
// needs a sudoers entry for reboot on a stock install.
func rebootHost() error {
	return exec.Command("sudo", "reboot").Run()
}

// handleAIDetect returns the most recent detection result.
func (s *Server) handleAIDetect(c *fiber.Ctx) error {
	if s.ai == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(protocol.Fail(errors.New("object detection not running")))
	}
	last, ok := s.ai.Last()
	if !ok {
		return c.JSON(fiber.Map{"detected": false})
	}
	return c.JSON(last)
}
