// Package relay wires HTTP handlers into a ServeMux for the conversation
// relay service via routing helpers.
package relay

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: health check, WebSocket endpoint, and the test page.
func SetupRoutes(r *Relay) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler(r))
	mux.HandleFunc("/health", HealthHandler(r))
	mux.HandleFunc("/ws", WebSocketHandler(r))
	mux.HandleFunc("/test", TestPageHandler)
	return mux
}
