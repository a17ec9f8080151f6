package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// GeminiAPIKey may be empty: the app still runs and every gateway action
	// fails fast with a configuration error.
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiModel      string

	TelegramToken string

	LogLevel string
	Debug    bool

	WebAddr string

	PreferIPv4     bool
	HTTPTimeout    time.Duration
	RequestTimeout time.Duration

	// AdvanceDelay is the pause before the wizard auto-advances after a
	// person has been picked.
	AdvanceDelay  time.Duration
	MaxConcurrent int
	MaxUploadMB   int
}

func Load() Config {
	cfg := Config{
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiModel:      getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Debug:            getEnvBool("DEBUG", false),
		WebAddr:          getEnv("WEB_ADDR", ":8080"),
		PreferIPv4:       getEnvBool("PREFER_IPV4", true),
		HTTPTimeout:      time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		AdvanceDelay:     time.Duration(getEnvInt("ADVANCE_DELAY_MS", 300)) * time.Millisecond,
		MaxConcurrent:    getEnvInt("MAX_CONCURRENT", 4),
		MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 25),
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = 300 * time.Millisecond
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxUploadMB < 1 {
		cfg.MaxUploadMB = 1
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
