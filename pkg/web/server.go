// Package web serves the stillness dashboard: status, reminder banner,
// camera overlay and the dismiss button.
package web

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-posture/internal/log"
	"github.com/teslashibe/go-posture/pkg/hub"
	"github.com/teslashibe/go-posture/pkg/monitor"
	"github.com/teslashibe/go-posture/pkg/overlay"
	"github.com/teslashibe/go-posture/pkg/stillness"
)

// Controller is the part of the monitor the dashboard drives.
type Controller interface {
	Snapshot() monitor.Status
	Dismiss()
	Config() stillness.Config
	Session() string
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, reminder, dismiss, face
	Message string `json:"message"`
}

const maxLogs = 500

// Options tunes the server.
type Options struct {
	Port      string
	StaticDir string  // served at /, skipped when empty
	CameraFPS float64 // max overlay frames per second to camera clients
	AccessLog bool
}

// DefaultOptions returns the standard dashboard settings.
func DefaultOptions() Options {
	return Options{
		Port:      "8080",
		StaticDir: "./web",
		CameraFPS: 2,
	}
}

// Server is the web dashboard server. It is also a monitor.Presenter.
type Server struct {
	app    *fiber.App
	opts   Options
	ctrl   Controller
	logger *slog.Logger

	logs   []LogEntry
	logsMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub

	frames    *rate.Limiter
	reminding bool // only touched from Present
}

// NewServer creates a new web dashboard server
func NewServer(opts Options, ctrl Controller) *Server {
	s := &Server{
		opts:      opts,
		ctrl:      ctrl,
		logger:    log.With("component", "web"),
		logs:      make([]LogEntry, 0, maxLogs),
		statusHub: hub.New("status"),
		logHub:    hub.New("logs"),
		cameraHub: hub.New("camera"),
		frames:    rate.NewLimiter(rate.Limit(opts.CameraFPS), 1),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Posture Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/logs", s.handleGetLogs)
	api.Post("/dismiss", s.handleDismiss)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleWS(s.statusHub)))
	app.Get("/ws/logs", websocket.New(s.handleWS(s.logHub)))
	app.Get("/ws/camera", websocket.New(s.handleWS(s.cameraHub)))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the hubs and blocks serving HTTP
func (s *Server) Start() error {
	s.logger.Info("web dashboard listening", "url", "http://localhost:"+s.opts.Port)

	go s.statusHub.Run()
	go s.logHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(":" + s.opts.Port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.logHub.Stop()
	s.cameraHub.Stop()
	return s.app.Shutdown()
}

// Present publishes a tick to dashboard clients. It never blocks the
// monitor loop: broadcasts are queued or dropped.
func (s *Server) Present(st monitor.Status) {
	v := NewView(st, s.ctrl.Config().TickInterval)

	if data, err := json.Marshal(v); err != nil {
		s.logger.Warn("encode status", "error", err)
	} else {
		msg := hub.NewJSONMessage(data)
		s.statusHub.Retain(msg)
		s.statusHub.Broadcast(msg)
	}

	switch {
	case st.Dismissed:
		s.AddLog("dismiss", v.Message)
	case st.Reminder && !s.reminding:
		s.AddLog("reminder", v.Message)
	case !st.Reminder && s.reminding:
		s.AddLog("info", "Reminder cleared: "+v.Message)
	}
	s.reminding = st.Reminder

	s.sendFrame(st)
}

func (s *Server) sendFrame(st monitor.Status) {
	if st.Frame == nil || s.cameraHub.ClientCount() == 0 || !s.frames.Allow() {
		return
	}

	alert := s.ctrl.Config().Alert(st.StillCount)
	frame, err := overlay.Render(st.Frame, st.Face, alert)
	if err != nil {
		s.logger.Warn("overlay render failed", "error", err)
		return
	}
	s.cameraHub.BroadcastBinary(frame)
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON(entry)
}

// Logs returns a copy of the log buffer.
func (s *Server) Logs() []LogEntry {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}
