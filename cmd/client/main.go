package main

import (
	"bufio"
	"chat-relay/client"
	"chat-relay/domain"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	clientID := config.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
		log.Info("No CHAT_CLIENT_ID set, generated one", "client_id", clientID)
	}

	// 2. Context for Ctrl+C: a graceful close, not a failure.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Shared input source: survives reconnections.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	// 4. Session wrapped in the reconnection state machine.
	formatter := client.Formatter{Me: clientID, Colours: config.Colours}
	timeline := client.NewTimeline(clientID)
	session := client.NewSession(log, config.ServerURL, clientID,
		domain.SystemClock{}, os.Stdout, formatter, timeline)

	runner := client.NewRunner(log, func(ctx context.Context, onConnected func()) error {
		return session.Run(ctx, onConnected, lines)
	}, config.MaxAttempts, config.ReconnectInterval)

	fmt.Printf("Connecting to %s as %q...\n", config.ServerURL, clientID)
	if err := runner.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return exitOK, nil
		}
		return exitRuntime, err
	}
	return exitOK, nil
}
