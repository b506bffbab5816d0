package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	t.Setenv("NEBULA_CONFIG_DIR", t.TempDir())
	t.Setenv("NEBULA_API_URL", "")
	t.Setenv("NEBULA_THEME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.SignupDatabase != "nebula" || cfg.SignupCollection != "users" {
		t.Errorf("Expected default signup routing, got %q/%q", cfg.SignupDatabase, cfg.SignupCollection)
	}
	if cfg.Timeout() != DefaultTimeout {
		t.Errorf("Expected default timeout, got %v", cfg.Timeout())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEBULA_CONFIG_DIR", dir)
	t.Setenv("NEBULA_API_URL", "https://support.example.com")

	if err := os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"base_url":"http://file.local","theme":"dark"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://support.example.com" {
		t.Errorf("Env should win over file, got %q", cfg.BaseURL)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Expected theme from file, got %q", cfg.Theme)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("NEBULA_CONFIG_DIR", t.TempDir())
	t.Setenv("NEBULA_API_URL", "")
	t.Setenv("NEBULA_THEME", "")

	in := DefaultConfig()
	in.BaseURL = "http://10.0.0.5:8000"
	in.TimeoutSeconds = 5

	if err := Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.BaseURL != in.BaseURL {
		t.Errorf("Expected %q, got %q", in.BaseURL, out.BaseURL)
	}
	if out.Timeout() != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", out.Timeout())
	}
}
