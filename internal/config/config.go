package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the conversation practice service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	BrainMode    string
	GeminiAPIKey string
	GeminiModel  string
	BrainHTTPURL string

	SpeechProvider string

	DatabaseURL  string
	HistoryLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "parla"),
		AllowAnyOrigin:   false,
		// auto picks genai when an API key is present, an HTTP brain when a
		// URL is set, and the mock otherwise.
		BrainMode: envOrDefault("BRAIN_ADAPTER_MODE", "auto"),
		// Empty means the brain tries its model priority list; setting
		// GEMINI_MODEL pins a single model instead.
		GeminiModel:              envTrimmed("GEMINI_MODEL"),
		BrainHTTPURL:             envTrimmed("BRAIN_HTTP_URL"),
		SpeechProvider:           envOrDefault("SPEECH_PROVIDER", "none"),
		DatabaseURL:              envTrimmed("DATABASE_URL"),
		HistoryLimit:             20,
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 10 * time.Minute,
	}

	// GOOGLE_API_KEY wins over GEMINI_API_KEY, matching the genai SDK.
	cfg.GeminiAPIKey = envTrimmed("GOOGLE_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = envTrimmed("GEMINI_API_KEY")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryLimit, err = intFromEnv("APP_HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("APP_HISTORY_LIMIT must be positive")
	}
	switch cfg.BrainMode {
	case "auto", "genai", "http", "mock":
	default:
		return Config{}, fmt.Errorf("BRAIN_ADAPTER_MODE must be one of auto, genai, http, mock")
	}
	switch cfg.SpeechProvider {
	case "none", "mock":
	default:
		return Config{}, fmt.Errorf("SPEECH_PROVIDER must be one of none, mock")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
