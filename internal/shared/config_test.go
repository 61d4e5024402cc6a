package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Backend.BaseURL != "http://localhost:8000" {
			t.Errorf("expected base URL http://localhost:8000, got %s", config.Backend.BaseURL)
		}
		if config.PollInterval() != 600*time.Millisecond {
			t.Errorf("expected poll interval 600ms, got %s", config.PollInterval())
		}
		if config.Project.Name != "New Song" || config.Project.Tempo != 80 || config.Project.Key != "C minor" {
			t.Errorf("unexpected project defaults: %+v", config.Project)
		}
		if config.Mix.MasterTargetLUFS != -14 {
			t.Errorf("expected -14 LUFS, got %v", config.Mix.MasterTargetLUFS)
		}
		if config.Upload.MaxFileBytes != 10*1024*1024 {
			t.Errorf("expected 10 MiB limit, got %d", config.Upload.MaxFileBytes)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[backend]
base_url = "http://studio.internal:9000"

[polling]
interval_ms = 250
max_attempts = 40
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Backend.BaseURL != "http://studio.internal:9000" {
			t.Errorf("unexpected base URL %s", config.Backend.BaseURL)
		}
		if config.Polling.MaxAttempts != 40 {
			t.Errorf("expected max attempts 40, got %d", config.Polling.MaxAttempts)
		}
		if config.Project.Tempo != 80 {
			t.Errorf("expected default tempo 80, got %d", config.Project.Tempo)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvBackendURL, "http://env-backend:7000")
		config := DefaultConfig()
		config.ApplyEnv()
		if config.Backend.BaseURL != "http://env-backend:7000" {
			t.Errorf("expected env override, got %s", config.Backend.BaseURL)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty base url", func(c *Config) { c.Backend.BaseURL = "" }},
			{"zero interval", func(c *Config) { c.Polling.IntervalMS = 0 }},
			{"inverted tempo bounds", func(c *Config) { c.Project.TempoMin, c.Project.TempoMax = 140, 60 }},
			{"extension without dot", func(c *Config) { c.Upload.Extensions = []string{"wav"} }},
		}
		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("LoadHeaders", func(t *testing.T) {
		config := DefaultConfig()
		if h, err := config.LoadHeaders(); err != nil || h != nil {
			t.Fatalf("expected no headers without a path, got %v, %v", h, err)
		}

		path := filepath.Join(t.TempDir(), "headers.json")
		if err := os.WriteFile(path, []byte(`{"Authorization":"Bearer x"}`), 0600); err != nil {
			t.Fatal(err)
		}
		config.Backend.HeadersPath = path
		h, err := config.LoadHeaders()
		if err != nil {
			t.Fatalf("LoadHeaders: %v", err)
		}
		if h["Authorization"] != "Bearer x" {
			t.Errorf("unexpected headers %v", h)
		}
	})
}
