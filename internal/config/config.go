// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, cache, queue, and auth.
type Config struct {
	HTTPAddr           string
	ShutdownTimeout    time.Duration
	WorkerCount        int
	QueueOutBuffer     int
	QueueHighWatermark int
	CacheTTL           time.Duration
	JWTSecret          string
	JWTTTL             time.Duration
	EmailDelay         time.Duration
	ActiveWindow       time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:    durenvs("SHUTDOWN_TIMEOUT", 15),
		WorkerCount:        atoienv("WORKER_COUNT", 1),
		QueueOutBuffer:     atoienv("QUEUE_OUT_BUFFER", 64),
		QueueHighWatermark: atoienv("QUEUE_HIGH_WATERMARK", 5000),
		CacheTTL:           durenvs("CACHE_TTL_SECONDS", 600),
		JWTSecret:          getenv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:             time.Duration(atoienv("JWT_TTL_HOURS", 24)) * time.Hour,
		EmailDelay:         durenvms("EMAIL_DELAY_MS", 2000),
		ActiveWindow:       time.Duration(atoienv("ACTIVE_WINDOW_MINUTES", 5)) * time.Minute,
	}
}
