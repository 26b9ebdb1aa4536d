// Package relay exposes HTTP handlers, including the WebSocket upgrade, the
// health check, and the built-in test page.
package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler returns the upgrade handler bound to the given relay. It
// upgrades the HTTP connection, wraps it in a Client, and attaches it; the
// relay's run loop launches the pump goroutines.
func WebSocketHandler(r *Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			r.logf("relay: WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, r, req.RemoteAddr)
		r.Attach(client)
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Connections   int    `json:"connections"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HealthHandler returns a JSON health check reporting the current connection
// count and process uptime for operational monitoring.
func HealthHandler(r *Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := healthResponse{
			Status:        "ok",
			Connections:   r.ConnectionCount(),
			UptimeSeconds: int64(time.Since(r.StartedAt()).Seconds()),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			r.logf("relay: error writing health response: %v", err)
		}
	}
}
