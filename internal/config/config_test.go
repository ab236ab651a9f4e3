package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/episteme")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTExpiry != 24*time.Hour {
		t.Fatalf("expected 24h expiry, got %v", cfg.Auth.JWTExpiry)
	}
	if cfg.Embedding.Model != "all-minilm-l6-v2" {
		t.Fatalf("unexpected default model %s", cfg.Embedding.Model)
	}
	if cfg.Environment != "development" {
		t.Fatalf("unexpected environment %s", cfg.Environment)
	}
	if cfg.Database.MaxConnections != 25 || cfg.Database.MaxIdle != 5 {
		t.Fatalf("unexpected pool sizing %d/%d", cfg.Database.MaxConnections, cfg.Database.MaxIdle)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/episteme")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "8080")

	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "server:\n  port: 9191\nlogging:\n  level: debug\nembedding:\n  model: bge-small\n"
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("expected overlay port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected overlay log level, got %s", cfg.Logging.Level)
	}
	if cfg.Embedding.Model != "bge-small" {
		t.Fatalf("expected overlay model, got %s", cfg.Embedding.Model)
	}
	// Fields absent from the overlay keep their env values.
	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("expected env host to survive, got %s", cfg.Server.Host)
	}
}

func TestLoadBadOverlayFile(t *testing.T) {
	setRequiredEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
