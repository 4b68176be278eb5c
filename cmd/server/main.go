package main

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/httpapi"
	"chat-relay/infrastructure/ws"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle.
// Returning the error to main keeps defers running and the entry point
// testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Room core: registry, broadcast engine, session protocol
	clock := domain.SystemClock{}
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry)
	room := domain.NewRoom(domain.RoomID(config.RoomID), clock.Now())
	roomService := services.NewRoomService(log, clock, room, registry, broadcaster)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervised workers (health heartbeat)
	stats := workers.NewStatsStore()
	heartbeat := workers.NewHeartbeatWorker(log, clock, config.HeartbeatInterval,
		func() int { return len(registry.Snapshot()) }, stats)
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(heartbeat)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 5. Transport: websocket upgrade + read-only projections
	wsHandler := ws.NewHandler(log, roomService, config.ConnectionBufferSize)
	mux := http.NewServeMux()
	mux.Handle("GET /ws", wsHandler)
	httpapi.NewAPI(log, roomService, stats).Register(mux)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	log.Info("Relay listening", "address", address, "room", config.RoomID)
	log.Info(fmt.Sprintf("Connect to: ws://%s/ws", address))

	select {
	case err := <-serveErr:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	// 6. Graceful shutdown: stop accepting, ask sessions to close,
	// flush within the grace period, then drop whatever remains.
	log.Info("Shutting down", "grace_period", config.ShutdownGracePeriod)
	graceCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(graceCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	if err := wsHandler.Shutdown(graceCtx); err != nil {
		log.Warn("Dropping sessions that did not flush in time", "error", err)
	}

	supervisor.Stop()
	<-supervisorDone
	log.Info("Server shutdown complete")
	return nil
}
