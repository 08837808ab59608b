package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	OriginAllowlist []string
	StaticDir       string
	LogLevel        string
	LogPretty       bool
	PingInterval    time.Duration
	DefaultRoom     string
	SendBuffer      int

	// DotEnv is false when no .env file was found.
	DotEnv bool
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (Config, error) {
	loaded := godotenv.Load(files...) == nil

	port := getenv("PORT", "8080")
	cfg := Config{
		Port:            port,
		OriginAllowlist: splitList(getenv("ORIGIN_ALLOWLIST", "http://localhost:"+port+",http://127.0.0.1:"+port)),
		StaticDir:       os.Getenv("STATIC_DIR"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		DefaultRoom:     getenv("DEFAULT_ROOM", "lobby"),
		DotEnv:          loaded,
	}

	var err error
	if cfg.LogPretty, err = strconv.ParseBool(getenv("LOG_PRETTY", "false")); err != nil {
		return Config{}, fmt.Errorf("LOG_PRETTY: %w", err)
	}
	if cfg.PingInterval, err = time.ParseDuration(getenv("PING_INTERVAL", "15s")); err != nil {
		return Config{}, fmt.Errorf("PING_INTERVAL: %w", err)
	}
	if cfg.PingInterval <= 0 {
		return Config{}, fmt.Errorf("PING_INTERVAL: must be positive, got %s", cfg.PingInterval)
	}
	if cfg.SendBuffer, err = strconv.Atoi(getenv("SEND_BUFFER", "64")); err != nil {
		return Config{}, fmt.Errorf("SEND_BUFFER: %w", err)
	}
	if cfg.SendBuffer < 1 {
		return Config{}, fmt.Errorf("SEND_BUFFER: must be at least 1, got %d", cfg.SendBuffer)
	}
	return cfg, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
