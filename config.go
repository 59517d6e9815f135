package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type config struct {
	Host           string        `env:"HOST" default:"0.0.0.0"`
	Port           int           `env:"PORT" default:"8000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" default:"*"`
	LogLevel       string        `env:"LOG_LEVEL" default:"info"`
	LogFormat      string        `env:"LOG_FORMAT" default:"text"`
	MaxMessageSize int64         `env:"MAX_MESSAGE_SIZE" default:"4096"`
	SendBuffer     int           `env:"SEND_BUFFER" default:"256"`
	PingPeriod     time.Duration `env:"PING_PERIOD" default:"27s"`
	MetricsTick    time.Duration `env:"METRICS_TICK" default:"60s"`
	StopTimeout    time.Duration `env:"STOP_TIMEOUT" default:"10s"`
	KillTimeout    time.Duration `env:"KILL_TIMEOUT" default:"1s"`
}

// loadConfig reads an optional .env file, then the environment.
func loadConfig() (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Error loading .env file", "error", err)
	}

	var cfg config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *config) addr() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

func (cfg *config) validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.MaxMessageSize <= 0 {
		return errors.New("MAX_MESSAGE_SIZE must be positive")
	}
	if cfg.SendBuffer <= 0 {
		return errors.New("SEND_BUFFER must be positive")
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= pongWait {
		return fmt.Errorf("PING_PERIOD must be positive and less than %v", pongWait)
	}
	if cfg.MetricsTick < 0 {
		return errors.New("METRICS_TICK must not be negative")
	}
	return nil
}

// allowOrigin reports whether a browser origin may connect. An empty origin
// is a non-browser client and is always allowed.
func (cfg *config) allowOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
