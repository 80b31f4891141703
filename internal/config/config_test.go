package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.MetricsNamespace != "parla" {
		t.Fatalf("MetricsNamespace = %q", cfg.MetricsNamespace)
	}
	if cfg.BrainMode != "auto" {
		t.Fatalf("BrainMode = %q", cfg.BrainMode)
	}
	if cfg.GeminiModel != "" {
		t.Fatalf("GeminiModel = %q, want empty (model priority list)", cfg.GeminiModel)
	}
	if cfg.HistoryLimit != 20 {
		t.Fatalf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if cfg.SessionInactivityTimeout != 10*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v", cfg.SessionInactivityTimeout)
	}
	if cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9999")
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "90s")
	t.Setenv("APP_HISTORY_LIMIT", "40")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "yes")
	t.Setenv("BRAIN_ADAPTER_MODE", "mock")
	t.Setenv("SPEECH_PROVIDER", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9999" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.SessionInactivityTimeout != 90*time.Second {
		t.Fatalf("SessionInactivityTimeout = %v", cfg.SessionInactivityTimeout)
	}
	if cfg.HistoryLimit != 40 {
		t.Fatalf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
	if cfg.BrainMode != "mock" || cfg.SpeechProvider != "mock" {
		t.Fatalf("BrainMode = %q, SpeechProvider = %q", cfg.BrainMode, cfg.SpeechProvider)
	}
}

func TestLoadAPIKeyPrecedence(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secondary")
	t.Setenv("GOOGLE_API_KEY", "primary")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "primary" {
		t.Fatalf("GeminiAPIKey = %q, want the GOOGLE_API_KEY value", cfg.GeminiAPIKey)
	}

	t.Setenv("GOOGLE_API_KEY", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "secondary" {
		t.Fatalf("GeminiAPIKey = %q, want the GEMINI_API_KEY value", cfg.GeminiAPIKey)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"APP_SESSION_INACTIVITY_TIMEOUT", "oops"},
		{"APP_SESSION_INACTIVITY_TIMEOUT", "1s"},
		{"APP_HISTORY_LIMIT", "0"},
		{"APP_HISTORY_LIMIT", "many"},
		{"APP_ALLOW_ANY_ORIGIN", "maybe"},
		{"BRAIN_ADAPTER_MODE", "carrier-pigeon"},
		{"SPEECH_PROVIDER", "webkit"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
