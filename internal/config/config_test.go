package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ARK_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Model != "seedance-1-0-pro-250528" {
		t.Errorf("unexpected default model %q", cfg.Model)
	}
	if cfg.PollBudgetSec != 600 {
		t.Errorf("expected default poll budget 600s, got %d", cfg.PollBudgetSec)
	}
	if cfg.ArchiveDir != "/tmp/seedance-archive" {
		t.Errorf("unexpected default archive dir %q", cfg.ArchiveDir)
	}
	if cfg.LogFormat != "text" || cfg.LogLevel != "info" {
		t.Errorf("unexpected default logging config %q/%q", cfg.LogFormat, cfg.LogLevel)
	}
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("ARK_API_KEY", "")

	_, err := Load()
	if !errors.Is(err, ErrArkAPIKeyRequired) {
		t.Errorf("expected ErrArkAPIKeyRequired, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("POLL_BUDGET_SEC", "120")
	t.Setenv("MODEL", "seedance-1-0-lite-t2v-250428")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.PollBudget() != 2*time.Minute {
		t.Errorf("expected 2m poll budget, got %v", cfg.PollBudget())
	}
	if cfg.Model != "seedance-1-0-lite-t2v-250428" {
		t.Errorf("unexpected model %q", cfg.Model)
	}
}

func TestConfig_S3Enabled(t *testing.T) {
	cfg := &Config{}
	if cfg.S3Enabled() {
		t.Error("expected S3 disabled without bucket and region")
	}

	cfg.S3Bucket = "videos"
	if cfg.S3Enabled() {
		t.Error("expected S3 disabled without region")
	}

	cfg.S3Region = "us-east-1"
	if !cfg.S3Enabled() {
		t.Error("expected S3 enabled with bucket and region")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrArkAPIKeyRequired) {
		t.Errorf("expected ErrArkAPIKeyRequired, got %v", err)
	}

	cfg.ArkAPIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := &Config{
		ArkAPIKey:          "super-secret",
		AWSSecretAccessKey: "aws-secret",
		Model:              "seedance-1-0-pro-250528",
	}

	s := cfg.String()
	if strings.Contains(s, "super-secret") || strings.Contains(s, "aws-secret") {
		t.Errorf("config string leaks secrets: %s", s)
	}
	if !strings.Contains(s, "seedance-1-0-pro-250528") {
		t.Errorf("expected model in config string: %s", s)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogFormat: "json", LogLevel: "debug"}
	if logger := cfg.NewLogger(); logger == nil {
		t.Error("expected a logger")
	}

	cfg = &Config{LogFormat: "text", LogLevel: "info"}
	if logger := cfg.NewLogger(); logger == nil {
		t.Error("expected a logger")
	}
}
