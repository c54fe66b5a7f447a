package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Sync.Interval != 30*time.Second {
		t.Errorf("Expected default sync interval 30s, got %s", cfg.Sync.Interval)
	}
	if cfg.PingURL() != "http://localhost:9090/api/ping" {
		t.Errorf("Unexpected ping URL %s", cfg.PingURL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9000"
remote:
  baseUrl: "https://api.example.com"
sync:
  interval: 10s
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Error writing config file: %v", err)
	}

	os.Setenv("FIELDFORM_CONFIG", path)
	os.Setenv("PORT", "7777")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}

	if cfg.Server.Port != "7777" {
		t.Errorf("Expected env to override file, got port %s", cfg.Server.Port)
	}
	if cfg.Remote.BaseURL != "https://api.example.com" {
		t.Errorf("Expected file value for base URL, got %s", cfg.Remote.BaseURL)
	}
	if cfg.Sync.Interval != 10*time.Second {
		t.Errorf("Expected 10s sync interval from file, got %s", cfg.Sync.Interval)
	}
}

func TestSyncIntervalFromEnvSeconds(t *testing.T) {
	os.Clearenv()
	os.Setenv("SYNC_INTERVAL_SECONDS", "5")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if cfg.Sync.Interval != 5*time.Second {
		t.Errorf("Expected 5s interval, got %s", cfg.Sync.Interval)
	}
}

func TestValidateProductionNeedsPassphrase(t *testing.T) {
	os.Clearenv()
	os.Setenv("ENVIRONMENT", "production")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected production config without passphrase to fail validation")
	}

	cfg.Store.EncryptionPassphrase = "long-lived-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected config with passphrase to validate: %v", err)
	}
}
