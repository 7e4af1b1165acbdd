package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	AdminPassword string
	DBPath        string
	LogLevel      slog.Level
	AdminCookie   string

	// Captioning service. An empty API key disables the analysis endpoints.
	CaptionBaseURL string
	CaptionAPIKey  string
	CaptionModel   string

	// Minimum spacing between automatic captioning requests, measured from
	// request start to request start. The default stays under a ~3
	// requests-per-minute budget.
	AnalyzeInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            getString("KEEPSAKE_ADDR", ":8080"),
		AdminPassword:   strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		DBPath:          getString("KEEPSAKE_DB_PATH", "data/keepsake.db"),
		LogLevel:        getLogLevel("KEEPSAKE_LOG_LEVEL", slog.LevelInfo),
		AdminCookie:     getString("KEEPSAKE_ADMIN_COOKIE", "keepsake_admin"),
		CaptionBaseURL:  getString("KEEPSAKE_CAPTION_BASE_URL", "https://generativelanguage.googleapis.com"),
		CaptionAPIKey:   strings.TrimSpace(os.Getenv("KEEPSAKE_CAPTION_API_KEY")),
		CaptionModel:    getString("KEEPSAKE_CAPTION_MODEL", "gemini-1.5-flash"),
		AnalyzeInterval: getDuration("KEEPSAKE_ANALYZE_INTERVAL", 21*time.Second),
	}

	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be set")
	}

	if cfg.AnalyzeInterval <= 0 {
		return nil, fmt.Errorf("KEEPSAKE_ANALYZE_INTERVAL must be positive")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getLogLevel(key string, fallback slog.Level) slog.Level {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
