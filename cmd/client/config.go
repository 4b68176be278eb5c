package main

import "time"

type Config struct {
	ServerURL         string        `env:"CHAT_SERVER_URL,default=ws://localhost:8080/ws"`
	ClientID          string        `env:"CHAT_CLIENT_ID"`
	LogLevel          string        `env:"LOG_LEVEL,default=WARN"`
	Colours           bool          `env:"CHAT_COLOURS,default=true"`
	MaxAttempts       int           `env:"CHAT_MAX_RECONNECT_ATTEMPTS,default=5"`
	ReconnectInterval time.Duration `env:"CHAT_RECONNECT_INTERVAL,default=5s"`
}
