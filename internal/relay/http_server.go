// Package relay constructs and starts the HTTP service carrying the relay
// with helpers that apply sensible production defaults.
package relay

import (
	"context"
	"log"
	"net/http"
	"time"
)

// CreateServer creates and configures an HTTP server with the specified port
// and handler. Timeouts apply to the plain HTTP surface; upgraded WebSocket
// connections are governed by the heartbeat instead.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer starts the HTTP server and blocks until it exits.
func StartServer(server *http.Server) error {
	log.Printf("relay: listening on %s", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer stops accepting new connections and waits for in-flight
// requests to finish or the timeout to pass. Upgraded WebSocket connections
// are closed separately by Relay.Shutdown.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("relay: shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("relay: HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("relay: HTTP server shutdown completed")
	return nil
}
