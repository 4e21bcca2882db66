package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/roverlabs/go-rover/internal/config"
	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/ai"
	"github.com/roverlabs/go-rover/pkg/audio"
	"github.com/roverlabs/go-rover/pkg/camera"
	"github.com/roverlabs/go-rover/pkg/motor"
	"github.com/roverlabs/go-rover/pkg/rover"
	"github.com/roverlabs/go-rover/pkg/sensors"
	"github.com/roverlabs/go-rover/pkg/telemetry"
	"github.com/roverlabs/go-rover/pkg/web"
)

func main() {
	cfg := config.Load()

	// Flags override the environment.
	port := flag.String("port", cfg.Port, "HTTP control API port")
	backend := flag.String("backend", cfg.BackendURL, "Telemetry backend websocket URL")
	mqttURL := flag.String("mqtt", cfg.MQTTBrokerURL, "MQTT broker URL (overrides websocket telemetry)")
	cameraDev := flag.Int("camera", cfg.CameraDevice, "V4L2 camera device index")
	modelPath := flag.String("model", ai.DefaultYOLOConfig().ModelPath, "Object detection ONNX model path")
	roverID := flag.String("id", cfg.RoverID, "Rover identifier (random when empty)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	noTelemetry := flag.Bool("no-telemetry", false, "Disable telemetry publishing")
	flag.Parse()

	log.Init(*logLevel)

	id := *roverID
	if id == "" {
		id = "rover-" + uuid.New().String()[:8]
	}

	log.Info("starting rover", "id", id, "port", *port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	hw := rover.Hardware{}

	left, err := motor.OpenGPIOWheel(motor.DefaultLeftPins)
	if err != nil {
		log.Warn("drivetrain unavailable, running without motors", "error", err)
	} else {
		right, rerr := motor.OpenGPIOWheel(motor.DefaultRightPins)
		if rerr != nil {
			log.Warn("right wheel unavailable, running without motors", "error", rerr)
		} else {
			hw.LeftWheel = left
			hw.RightWheel = right
		}
	}

	reader, err := sensors.OpenGPIOReader(sensors.DefaultPins)
	if err != nil {
		log.Warn("sensor hardware unavailable", "error", err)
	} else {
		hw.SensorReader = reader
	}

	camSource, err := camera.OpenV4L2(*cameraDev)
	if err != nil {
		log.Warn("camera unavailable, video features disabled", "device", *cameraDev, "error", err)
	} else {
		hw.CameraSource = camSource
	}

	audioSink, err := audio.NewAPlaySink()
	if err != nil {
		log.Warn("audio output unavailable", "error", err)
	} else {
		hw.AudioSink = audioSink
	}

	yoloCfg := ai.DefaultYOLOConfig()
	yoloCfg.ModelPath = *modelPath
	detector, err := ai.NewYOLO(yoloCfg)
	if err != nil {
		log.Warn("object detection unavailable", "model", *modelPath, "error", err)
	} else {
		hw.Detector = detector
		defer detector.Close()
	}

	var sink telemetry.Sink
	switch {
	case *noTelemetry:
		log.Info("telemetry disabled")
	case *mqttURL != "":
		sink = telemetry.NewMQTTSink(*mqttURL, id)
		log.Info("telemetry via mqtt", "broker", *mqttURL)
	default:
		sink = telemetry.NewWebSocketSink(*backend)
		log.Info("telemetry via websocket", "backend", *backend)
	}

	r := rover.New(hw, sink, id)
	r.Start(ctx)

	server := web.NewServer(*port, id, r.Store, r.Dispatcher, r.Camera, r.Audio, r.AI)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errChan:
		log.Error("control server failed", "error", err)
	}

	cancel()
	if err := server.Shutdown(); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	r.Stop()

	log.Info("goodbye")
}
