package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/hub"
)

// ConfigResponse reports the fixed tracker parameters.
type ConfigResponse struct {
	Session         string  `json:"session"`
	MovementEpsilon float64 `json:"movement_epsilon_px"`
	StillThreshold  int     `json:"still_threshold_ticks"`
	TickIntervalMS  int64   `json:"tick_interval_ms"`
}

// handleStatus returns the latest tick
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(NewView(s.ctrl.Snapshot(), s.ctrl.Config().TickInterval))
}

// handleConfig returns the thresholds. They are read-only.
func (s *Server) handleConfig(c *fiber.Ctx) error {
	cfg := s.ctrl.Config()
	return c.JSON(ConfigResponse{
		Session:         s.ctrl.Session(),
		MovementEpsilon: cfg.MovementEpsilon,
		StillThreshold:  cfg.StillThreshold,
		TickIntervalMS:  cfg.TickInterval.Milliseconds(),
	})
}

// handleDismiss queues a dismiss; it takes effect before the next tick
func (s *Server) handleDismiss(c *fiber.Ctx) error {
	debug.Log("dismiss requested", "remote", c.IP())
	s.ctrl.Dismiss()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"dismissed": true,
	})
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	return c.JSON(s.Logs())
}

// handleWS attaches a websocket connection to h until it closes
func (s *Server) handleWS(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.NewClient(h, c).Run()
	}
}
