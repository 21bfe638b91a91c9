// Package watch follows a running posture dashboard from the terminal.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-posture/internal/httpc"
)

// Status is the subset of the dashboard status the watcher prints.
type Status struct {
	Session        string    `json:"session"`
	Tick           uint64    `json:"tick"`
	Time           time.Time `json:"time"`
	StillCount     int       `json:"still_count"`
	Alert          string    `json:"alert"`
	Reminder       bool      `json:"reminder"`
	Dismissed      bool      `json:"dismissed"`
	Message        string    `json:"message"`
	Movement       string    `json:"movement"`
	StillSeconds   float64   `json:"still_seconds"`
	Classification struct {
		Kind  string `json:"kind"`
		Count int    `json:"count"`
	} `json:"classification"`
}

// Format renders one status line.
func Format(s Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-5d %-13s %-8s still=%-3d", s.Tick, s.Classification.Kind, s.Alert, s.StillCount)
	if s.Message != "" {
		fmt.Fprintf(&b, " %s", s.Message)
	}
	if s.Reminder {
		b.WriteString("  ⏰ take a break")
	}
	return b.String()
}

// StatusURL converts a dashboard base URL to its status websocket URL.
func StatusURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/status"
	return u.String(), nil
}

// Follow streams statuses from the dashboard until ctx is done or the
// connection drops.
func Follow(ctx context.Context, base string, fn func(Status)) error {
	wsURL, err := StatusURL(base)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: httpc.DefaultConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read status: %w", err)
		}

		var s Status
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode status: %w", err)
		}
		fn(s)
	}
}

// Dismiss asks the dashboard to clear the reminder.
func Dismiss(ctx context.Context, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(base, "/")+"/api/dismiss", nil)
	if err != nil {
		return err
	}

	resp, err := httpc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dismiss: unexpected status %s", resp.Status)
	}
	return nil
}
