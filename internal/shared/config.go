package shared

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// EnvBackendURL overrides [BackendConfig.BaseURL] when set.
const EnvBackendURL = "SONGSMITH_BACKEND_URL"

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Polling  PollingConfig  `toml:"polling"`
	Project  ProjectConfig  `toml:"project"`
	Mix      MixConfig      `toml:"mix"`
	Video    VideoConfig    `toml:"video"`
	Upload   UploadConfig   `toml:"upload"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Export   ExportConfig   `toml:"export"`
}

// BackendConfig contains the studio backend connection settings.
type BackendConfig struct {
	BaseURL           string  `toml:"base_url" validate:"required,url"`
	TimeoutSeconds    int     `toml:"timeout_seconds" validate:"gte=0"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"`
	HeadersPath       string  `toml:"headers_path"`
}

// PollingConfig tunes the job status loop.
type PollingConfig struct {
	IntervalMS  int `toml:"interval_ms" validate:"gt=0"`
	MaxAttempts int `toml:"max_attempts" validate:"gte=0"`
}

// ProjectConfig holds defaults for new projects and tempo bounds.
type ProjectConfig struct {
	Name        string `toml:"name" validate:"required"`
	Tempo       int    `toml:"tempo" validate:"gt=0"`
	Key         string `toml:"key"`
	Style       string `toml:"style"`
	DurationSec int    `toml:"duration_sec" validate:"gt=0"`
	LengthSec   int    `toml:"length_sec" validate:"gt=0"`
	TempoMin    int    `toml:"tempo_min" validate:"gt=0"`
	TempoMax    int    `toml:"tempo_max" validate:"gtefield=TempoMin"`
	ClampTempo  bool   `toml:"clamp_tempo"`
}

// MixConfig contains mix & master request settings.
type MixConfig struct {
	MasterTargetLUFS float64 `toml:"master_target_lufs" validate:"lte=0"`
}

// VideoConfig contains video generation request settings.
type VideoConfig struct {
	AspectRatio string `toml:"aspect_ratio" validate:"required"`
}

// UploadConfig contains voice clip limits.
type UploadConfig struct {
	MaxFiles     int      `toml:"max_files" validate:"gt=0"`
	MaxFileBytes int64    `toml:"max_file_bytes" validate:"gt=0"`
	Extensions   []string `toml:"extensions" validate:"min=1,dive,startswith=."`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains mock backend settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ExportConfig tunes result downloads.
type ExportConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv applies environment overrides to c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.BaseURL = v
	}
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidConfig, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PollInterval returns the configured delay between status fetches.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMS) * time.Millisecond
}

// Timeout returns the HTTP client timeout, zero meaning none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// LoadHeaders reads the extra backend headers file, if configured.
func (c *Config) LoadHeaders() (map[string]string, error) {
	if c.Backend.HeadersPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Backend.HeadersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}
	var headers map[string]string
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, fmt.Errorf("%w: headers file is not a JSON object: %v", ErrInvalidConfig, err)
	}
	return headers, nil
}
