package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lexrelay/convrelay/internal/relay"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := relay.NewConfigFromEnv()
	relay.SetConfig(cfg)

	svc := relay.NewRelay(nil)
	go svc.Run()

	mux := relay.SetupRoutes(svc)
	httpServer := relay.CreateServer(cfg.Port, mux)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- relay.StartServer(httpServer)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	// Stop accepting new connections first, then close the live sockets.
	if err := relay.ShutdownServer(httpServer, 10*time.Second); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := svc.Shutdown(5 * time.Second); err != nil {
		log.Printf("Relay shutdown: %v", err)
	}
}
