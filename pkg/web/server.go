// Package web exposes the rover's HTTP control plane and live websocket
// feeds for dashboard clients.
package web

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/ai"
	"github.com/roverlabs/go-rover/pkg/audio"
	"github.com/roverlabs/go-rover/pkg/camera"
	"github.com/roverlabs/go-rover/pkg/command"
	"github.com/roverlabs/go-rover/pkg/hub"
	"github.com/roverlabs/go-rover/pkg/state"
)

const (
	// statusBroadcastInterval paces /ws/status pushes.
	statusBroadcastInterval = 1 * time.Second

	// streamFrameInterval paces camera frames on /ws/camera and the
	// MJPEG endpoint (~10fps).
	streamFrameInterval = 100 * time.Millisecond
)

// Server is the rover's HTTP and websocket front end.
type Server struct {
	app  *fiber.App
	port string

	roverID    string
	store      *state.Store
	dispatcher *command.Dispatcher
	camera     *camera.Manager
	audio      *audio.Player
	ai         *ai.Loop

	statusHub *hub.Hub
	cameraHub *hub.Hub

	// restart reboots the host. Swappable in tests.
	restart func() error
}

// NewServer builds the server and mounts all routes.
func NewServer(port, roverID string, store *state.Store, dispatcher *command.Dispatcher, cam *camera.Manager, player *audio.Player, aiLoop *ai.Loop) *Server {
	s := &Server{
		port:       port,
		roverID:    roverID,
		store:      store,
		dispatcher: dispatcher,
		camera:     cam,
		audio:      player,
		ai:         aiLoop,
		statusHub:  hub.New("status"),
		cameraHub:  hub.New("camera"),
		restart:    rebootHost,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Rover Control",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/", s.handleIdentity)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/sensors", s.handleSensors)
	api.Get("/data", s.handleData)
	api.Post("/control", s.handleControl)
	api.Get("/config", s.handleGetConfig)
	api.Post("/config", s.handleSetConfig)
	api.Get("/camera/stream", s.handleCameraStream)
	api.Post("/camera/capture", s.handleCameraCapture)
	api.Post("/audio/play", s.handleAudioPlay)
	api.Get("/ai/detect", s.handleAIDetect)
	api.Post("/system/restart", s.handleSystemRestart)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hub loops, the broadcast pumps, and the listener.
// Blocks until the listener fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	go s.statusHub.Run()
	go s.cameraHub.Run()
	go s.statusLoop(ctx)
	go s.cameraLoop(ctx)

	log.Info("control server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// statusLoop pushes the full state snapshot to dashboard clients.
func (s *Server) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(statusBroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			if err := s.statusHub.BroadcastJSON(s.store.Snapshot()); err != nil {
				log.Error("status broadcast failed", "error", err)
			}
		}
	}
}

// cameraLoop pushes JPEG frames to /ws/camera clients. Frames are only
// read while someone is watching.
func (s *Server) cameraLoop(ctx context.Context) {
	if s.camera == nil || !s.camera.Available() {
		return
	}

	ticker := time.NewTicker(streamFrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.cameraHub.ClientCount() == 0 {
				continue
			}
			frame, err := s.camera.Frame()
			if err != nil {
				log.Warn("camera frame read failed", "error", err)
				continue
			}
			s.cameraHub.BroadcastBinary(frame)
		}
	}
}

func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)

	// First snapshot immediately so new clients don't wait a full tick.
	c.WriteJSON(s.store.Snapshot())

	client.Run()
}

func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Run()
}
