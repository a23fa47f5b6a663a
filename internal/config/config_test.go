// ABOUTME: Tests for makeweight configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, .env files, and path expansion.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, k := range []string{
		"MAKEWEIGHT_DATA_DIR", "MAKEWEIGHT_LOG_LEVEL", "MAKEWEIGHT_SYNC",
		"MAKEWEIGHT_LISTEN", "MAKEWEIGHT_ACTIVITY", "MAKEWEIGHT_CHARM_HOST", "MAKEWEIGHT_CORS_ORIGINS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Keep stray .env files in the package directory out of the way.
	t.Chdir(tmpDir)
	return tmpDir
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	got := cfg.GetDataDir()
	if got == "" {
		t.Error("GetDataDir() returned empty string")
	}
	if filepath.Base(got) != "makeweight" {
		t.Errorf("GetDataDir() = %q, want a makeweight directory", got)
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/makeweight-test"}
	if got := cfg.GetDataDir(); got != "/tmp/makeweight-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/makeweight-test")
	}
	if got := cfg.DBPath(); got != "/tmp/makeweight-test/makeweight.db" {
		t.Errorf("DBPath() = %q", got)
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/cut-data"}
	got := cfg.GetDataDir()
	want := filepath.Join(home, "cut-data")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/cut", filepath.Join(home, "data/cut")},
		{"data/cut", "data/cut"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.Listen != "127.0.0.1:8787" {
		t.Errorf("Expected default listen address, got %q", cfg.Listen)
	}
	if cfg.Sync {
		t.Error("Expected sync off by default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		DataDir:       "/tmp/cut-data",
		LogLevel:      "debug",
		Sync:          true,
		ActivityLevel: "very_active",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.DataDir != "/tmp/cut-data" {
		t.Errorf("DataDir mismatch: got %q, want %q", loaded.DataDir, "/tmp/cut-data")
	}
	if loaded.LogLevel != "debug" || !loaded.Sync || loaded.ActivityLevel != "very_active" {
		t.Errorf("Loaded config mismatch: %+v", loaded)
	}
	if loaded.CharmHost != "charm.2389.dev" {
		t.Errorf("Expected default charm host filled in, got %q", loaded.CharmHost)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)

	if err := (&Config{DataDir: "/from/file", LogLevel: "warn"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("MAKEWEIGHT_DATA_DIR", "/from/env")
	t.Setenv("MAKEWEIGHT_SYNC", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("Expected env to win, got %q", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected file value for log level, got %q", cfg.LogLevel)
	}
	if !cfg.Sync {
		t.Error("Expected sync enabled from env")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MAKEWEIGHT_LISTEN=0.0.0.0:9999\n"), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MAKEWEIGHT_LISTEN") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9999" {
		t.Errorf("Expected listen from .env, got %q", cfg.Listen)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)

	t.Setenv("MAKEWEIGHT_LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid log level")
	}

	t.Setenv("MAKEWEIGHT_LOG_LEVEL", "info")
	t.Setenv("MAKEWEIGHT_ACTIVITY", "couch")
	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid activity level")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	cfg := &Config{LogLevel: "info"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "makeweight")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "makeweight")
	os.MkdirAll(configDir, 0755)
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " https://a.example , ,https://b.example"}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("Origins() = %v", got)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := GetConfigPath(); got != "/custom/config/makeweight/config.json" {
		t.Errorf("GetConfigPath() = %q", got)
	}
}
