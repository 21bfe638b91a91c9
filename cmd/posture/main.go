// Posture - sit-still reminder
//
// Watches the webcam, tracks where your face is once per second and
// raises a break reminder on the dashboard after you have stayed put
// for too long.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-posture/internal/config"
	"github.com/teslashibe/go-posture/internal/log"
	"github.com/teslashibe/go-posture/pkg/camera"
	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/monitor"
	"github.com/teslashibe/go-posture/pkg/web"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	log.InitWithOptions(log.Options{Level: level, File: cfg.LogFile})
	debug.Enabled = cfg.Debug
	debug.Tracking = cfg.DebugTracking

	if err := run(cfg); err != nil {
		log.Error("posture stopped", "error", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, .env, environment and flags, in that order.
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	if err := config.LoadDotEnv(config.EnvFile); err != nil {
		return cfg, err
	}
	if err := cfg.LoadEnv(); err != nil {
		return cfg, err
	}

	flag.IntVar(&cfg.Device, "device", cfg.Device, "Video device index")
	flag.StringVar(&cfg.Preset, "preset", cfg.Preset, "Camera preset: default, low, 720p, 1080p")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Capture width in pixels")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Capture height in pixels")
	flag.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Path to the YuNet face detection ONNX model")
	flag.Float64Var(&cfg.Confidence, "confidence", cfg.Confidence, "Minimum face confidence (0-1]")
	flag.StringVar(&cfg.Port, "port", cfg.Port, "Dashboard HTTP port")
	flag.StringVar(&cfg.StaticDir, "web", cfg.StaticDir, "Dashboard static files directory")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this file (rotated)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	flag.BoolVar(&cfg.DebugTracking, "debug-tracking", cfg.DebugTracking, "Log every tick (very verbose)")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if err := cfg.ApplyPreset(explicit); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config) error {
	cam, err := camera.Open(cfg.Camera())
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	defer cam.Close()
	log.Info("camera ready", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height)

	det, err := detection.NewYuNet(cfg.Detection())
	if err != nil {
		return fmt.Errorf("face detector: %w", err)
	}
	defer det.Close()
	log.Info("face detector ready", "model", cfg.ModelPath)

	mon := monitor.New(cfg.Stillness(), cam, det)

	opts := web.DefaultOptions()
	opts.Port = cfg.Port
	opts.StaticDir = cfg.StaticDir
	opts.CameraFPS = cfg.CameraFPS
	opts.AccessLog = cfg.Debug

	dash := web.NewServer(opts, mon)
	mon.AddPresenter(dash)
	dash.StartAsync()
	defer dash.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("goodbye")
	return nil
}
