package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("FIELDS_PATH", "")
	t.Setenv("REINDEX_MINUTES", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RATING_WEBHOOK_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppName != "starfield" {
		t.Fatalf("expected default app name, got %q", cfg.AppName)
	}
	if cfg.FieldsPath != "./fields" {
		t.Fatalf("expected default fields path, got %q", cfg.FieldsPath)
	}
	if cfg.ReindexMinutes != 15 {
		t.Fatalf("expected 15 reindex minutes, got %d", cfg.ReindexMinutes)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.RatingWebhookURL != "" {
		t.Fatalf("expected no webhook by default, got %q", cfg.RatingWebhookURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REINDEX_MINUTES", "-4")
	t.Setenv("REINDEX_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATING_WEBHOOK_URL", " https://hooks.example/ratings ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ReindexMinutes != 15 {
		t.Fatalf("expected non-positive minutes to fall back to 15, got %d", cfg.ReindexMinutes)
	}
	if cfg.ReindexEnabled {
		t.Fatalf("expected reindex disabled")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.RatingWebhookURL != "https://hooks.example/ratings" {
		t.Fatalf("expected trimmed webhook url, got %q", cfg.RatingWebhookURL)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "LOUD")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}
