// Package config holds client configuration for the Nebula support client.
// Settings are read from a JSON file in the config directory, then overridden
// by environment variables (a local .env file is honored if present).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultBaseURL is the backend origin used when nothing else is configured.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds every backend call. The support bot runs an LLM
	// workflow server-side, so replies can take a while.
	DefaultTimeout = 60 * time.Second
)

// Config holds user preferences and backend connection settings.
type Config struct {
	BaseURL string `json:"base_url"`
	Theme   string `json:"theme"` // "light" or "dark"

	// Timeout for backend calls, in seconds. Zero means DefaultTimeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// Signup routing fields sent to /api/create-user.
	SignupDatabase   string `json:"signup_database,omitempty"`
	SignupCollection string `json:"signup_collection,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		Theme:            "light",
		SignupDatabase:   "nebula",
		SignupCollection: "users",
	}
}

// Timeout returns the configured backend timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// Dir returns the directory where config and credentials are stored.
func Dir() (string, error) {
	if dir := os.Getenv("NEBULA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nebula"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment overrides.
func Load() (Config, error) {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path, err := File()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return applyEnv(cfg), err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SignupDatabase == "" {
		cfg.SignupDatabase = "nebula"
	}
	if cfg.SignupCollection == "" {
		cfg.SignupCollection = "users"
	}

	return applyEnv(cfg), nil
}

// applyEnv layers environment variables over the file-based config.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("NEBULA_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("NEBULA_THEME"); v != "" {
		cfg.Theme = v
	}
	return cfg
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := File()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
