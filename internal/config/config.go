package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the feedback client shell.
type Config struct {
	ListenAddr     string
	BackendURL     string
	RequestTimeout time.Duration
	DownloadDir    string
	DownloadName   string
	Clubs          []string
	RefreshCron    string
	LogLevel       string
}

// FromEnv creates a configuration instance sourced from environment variables.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:     getEnv("FEEDBACK_LISTEN_ADDR", ":8081"),
		BackendURL:     strings.TrimRight(getEnv("FEEDBACK_BACKEND_URL", "http://127.0.0.1:8000"), "/"),
		RequestTimeout: 60 * time.Second,
		DownloadDir:    getEnv("FEEDBACK_DOWNLOAD_DIR", "downloads"),
		DownloadName:   getEnv("FEEDBACK_DOWNLOAD_NAME", "sentiment_summary.pdf"),
		Clubs:          splitList(getEnv("FEEDBACK_CLUBS", "CSEA,AlgoGeeks,Glugot,ARVR,CSI,IEEE")),
		RefreshCron:    os.Getenv("FEEDBACK_REFRESH_CRON"),
		LogLevel:       getEnv("FEEDBACK_LOG_LEVEL", "info"),
	}

	if timeout := os.Getenv("FEEDBACK_REQUEST_TIMEOUT_S"); timeout != "" {
		var seconds int
		if _, err := fmt.Sscanf(timeout, "%d", &seconds); err != nil {
			return Config{}, fmt.Errorf("parse FEEDBACK_REQUEST_TIMEOUT_S: %w", err)
		}
		if seconds <= 0 {
			return Config{}, fmt.Errorf("parse FEEDBACK_REQUEST_TIMEOUT_S: must be positive, got %d", seconds)
		}
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}

	if len(cfg.Clubs) == 0 {
		return Config{}, fmt.Errorf("parse FEEDBACK_CLUBS: no clubs configured")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
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
