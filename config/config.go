// Package config loads application configuration from environment variables,
// optionally layered over a YAML file named by FIELDFORM_CONFIG.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Remote   RemoteConfig   `yaml:"remote"`
	Sync     SyncConfig     `yaml:"sync"`
	Firebase FirebaseConfig `yaml:"firebase"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type StoreConfig struct {
	DataDir              string `yaml:"dataDir"`
	EncryptionPassphrase string `yaml:"encryptionPassphrase"`
}

// RemoteConfig points at the backend the sync queue drains against.
type RemoteConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	PingPath string `yaml:"pingPath"`
}

type SyncConfig struct {
	Interval      time.Duration `yaml:"interval"`
	ProbeInterval time.Duration `yaml:"probeInterval"`
}

type FirebaseConfig struct {
	ProjectID string `yaml:"projectId"`
}

// Load reads the optional YAML file, then lets environment variables
// override it. Missing values fall back to development defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Store: StoreConfig{
			DataDir: "./data",
		},
		Remote: RemoteConfig{
			BaseURL:  "http://localhost:9090/api",
			PingPath: "/ping",
		},
		Sync: SyncConfig{
			Interval:      30 * time.Second,
			ProbeInterval: 15 * time.Second,
		},
		Firebase: FirebaseConfig{
			ProjectID: "fieldform-app",
		},
	}

	if path := os.Getenv("FIELDFORM_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Server.Environment, "ENVIRONMENT")
	overrideString(&cfg.Store.DataDir, "DATA_DIR")
	overrideString(&cfg.Store.EncryptionPassphrase, "ENCRYPTION_PASSPHRASE")
	overrideString(&cfg.Remote.BaseURL, "REMOTE_BASE_URL")
	overrideString(&cfg.Remote.PingPath, "REMOTE_PING_PATH")
	overrideDuration(&cfg.Sync.Interval, "SYNC_INTERVAL_SECONDS")
	overrideDuration(&cfg.Sync.ProbeInterval, "PROBE_INTERVAL_SECONDS")
	overrideString(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")

	return cfg, nil
}

func overrideString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func overrideDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			*target = time.Duration(seconds) * time.Second
		}
	}
}

// PingURL is the full URL the connectivity probe polls.
func (c *Config) PingURL() string {
	return c.Remote.BaseURL + c.Remote.PingPath
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required")
	}
	if c.IsProduction() && c.Store.EncryptionPassphrase == "" {
		return fmt.Errorf("ENCRYPTION_PASSPHRASE must be set in production")
	}
	return nil
}
