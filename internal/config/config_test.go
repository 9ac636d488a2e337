package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"learnsphere/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("LEARNSPHERE_API_URL", "")
	t.Setenv("LEARNSPHERE_THEME", "")

	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != config.DefaultAPIURL {
		t.Errorf("expected api url %q, got %q", config.DefaultAPIURL, cfg.APIURL)
	}
	if cfg.Theme != config.ThemeDark {
		t.Errorf("expected theme %q, got %q", config.ThemeDark, cfg.Theme)
	}
	if cfg.FocusMinutes != config.DefaultFocusMinutes {
		t.Errorf("expected focus minutes %d, got %d", config.DefaultFocusMinutes, cfg.FocusMinutes)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("expected no request timeout, got %v", cfg.RequestTimeout)
	}
}

func TestNew_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	settings := `{"api_url":"https://api.example.com/","theme":"light","focus_minutes":50,"request_timeout":"3s"}`
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(settings), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.Theme != config.ThemeLight {
		t.Errorf("expected light theme, got %q", cfg.Theme)
	}
	if cfg.FocusMinutes != 50 {
		t.Errorf("expected 50 focus minutes, got %d", cfg.FocusMinutes)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.RequestTimeout)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("LEARNSPHERE_API_URL", "http://env.example.com")

	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://env.example.com" {
		t.Errorf("expected env api url, got %q", cfg.APIURL)
	}
}

func TestSetTheme_Persists(t *testing.T) {
	t.Setenv("LEARNSPHERE_THEME", "")
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.SetTheme("Light"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Theme != config.ThemeLight {
		t.Errorf("expected light theme, got %q", cfg.Theme)
	}

	reloaded, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Theme != config.ThemeLight {
		t.Errorf("expected persisted light theme, got %q", reloaded.Theme)
	}
}

func TestSetTheme_WritesOnlyFileSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.SettingsFile)
	if err := os.WriteFile(path, []byte(`{"focus_minutes":40}`), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	t.Setenv("LEARNSPHERE_API_URL", "http://staging.invalid:9999")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.SetTheme("light"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("settings are not JSON: %v\n%s", err, data)
	}
	if len(saved) != 2 || saved["theme"] != "light" || saved["focus_minutes"] != float64(40) {
		t.Errorf("expected only theme and focus_minutes, got %v", saved)
	}

	t.Setenv("LEARNSPHERE_API_URL", "")
	reloaded, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.APIURL != config.DefaultAPIURL {
		t.Errorf("environment override leaked into settings: %q", reloaded.APIURL)
	}
}

func TestSetTheme_Invalid(t *testing.T) {
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.SetTheme("purple"); err == nil {
		t.Error("expected error for invalid theme")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "learnsphere") {
		t.Errorf("unexpected dir %q", got)
	}
}
